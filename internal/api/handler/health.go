package handler

import (
	"net/http"

	"github.com/edvin/provisioner/internal/api/response"
)

type Health struct {
	svc Provisioner
}

func NewHealth(svc Provisioner) *Health {
	return &Health{svc: svc}
}

// Get godoc
//
//	@Summary		Service and backend health
//	@Description	Runs a trivial command in the execution context. Always 200; status is healthy or degraded.
//	@Tags			Health
//	@Success		200 {object} model.Health
//	@Router			/health [get]
func (h *Health) Get(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.svc.Health(r.Context()))
}
