package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Error: message})
}

// ListResponse wraps a list with its length.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

func WriteList(w http.ResponseWriter, items any, count int) {
	WriteJSON(w, http.StatusOK, ListResponse{Items: items, Count: count})
}
