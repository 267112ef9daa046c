package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	mu   sync.Mutex
	args [][]any
}

func (s *recordingStore) Exec(_ context.Context, _ string, arguments ...any) (pgconn.CommandTag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.args = append(s.args, arguments)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestExtractResource(t *testing.T) {
	tests := []struct {
		path     string
		wantType string
		wantID   string
	}{
		{"/api/v1/provision", "provision", ""},
		{"/api/v1/deprovision/acme", "deprovision", "acme"},
		{"/api/v1/tenants/acme/status", "tenants", "acme"},
		{"/api/v1/tenants/acme/reset-password", "tenants", "acme"},
	}
	for _, tt := range tests {
		resType, resID := extractResource(tt.path)
		require.NotNil(t, resType, tt.path)
		assert.Equal(t, tt.wantType, *resType, tt.path)
		if tt.wantID == "" {
			assert.Nil(t, resID, tt.path)
		} else {
			require.NotNil(t, resID, tt.path)
			assert.Equal(t, tt.wantID, *resID, tt.path)
		}
	}

	resType, resID := extractResource("/api/v1/")
	assert.Nil(t, resType)
	assert.Nil(t, resID)
}

func TestSanitizeBody(t *testing.T) {
	body := []byte(`{"organization_name":"Acme","admin_password":"secret123","password":"x"}`)
	sanitized := sanitizeBody(body)

	var result map[string]any
	require.NoError(t, json.Unmarshal(sanitized, &result))
	assert.Equal(t, "Acme", result["organization_name"])
	assert.Equal(t, "[REDACTED]", result["admin_password"])
	assert.Equal(t, "[REDACTED]", result["password"])
}

func TestSanitizeBody_NonObjectDropped(t *testing.T) {
	assert.Nil(t, sanitizeBody([]byte(`["secret"]`)))
}

func TestAuditLogger_RecordsMutatingRequests(t *testing.T) {
	store := &recordingStore{}
	al := NewAuditLogger(store, zerolog.Nop())

	handler := al.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	post := httptest.NewRequest(http.MethodPost, "/api/v1/provision",
		strings.NewReader(`{"organization_name":"Acme","admin_password":"hunter2"}`))
	handler.ServeHTTP(httptest.NewRecorder(), post)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tenants", nil))

	al.Close()

	require.Len(t, store.args, 1)
	args := store.args[0]
	assert.Equal(t, http.MethodPost, args[2])
	assert.Equal(t, "/api/v1/provision", args[3])
	assert.Equal(t, http.StatusCreated, args[6])
	body := string(args[7].(json.RawMessage))
	assert.NotContains(t, body, "hunter2")
	assert.Contains(t, body, "Acme")
}
