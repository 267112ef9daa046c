package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/provisioner/internal/model"
)

func TestHealthGet_DegradedStillReturns200(t *testing.T) {
	svc := new(mockProvisioner)
	svc.On("Health", mock.Anything).Return(model.Health{
		Status:           model.HealthDegraded,
		ExecMode:         "docker",
		BackendContainer: "erpnext-backend",
		MasterSite:       "master.localhost",
		Timestamp:        "2026-01-02T03:04:05Z",
	})
	h := NewHealth(svc)
	rec := httptest.NewRecorder()

	h.Get(rec, newRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "docker", body["exec_mode"])
	assert.Equal(t, "erpnext-backend", body["backend_container"])
	assert.Equal(t, "master.localhost", body["master_site"])
	assert.Equal(t, "2026-01-02T03:04:05Z", body["timestamp"])
	svc.AssertExpectations(t)
}
