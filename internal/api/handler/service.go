package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/api/response"
	"github.com/edvin/provisioner/internal/core"
	"github.com/edvin/provisioner/internal/model"
	"github.com/edvin/provisioner/internal/runner"
)

// Provisioner is implemented by *core.ProvisionService.
type Provisioner interface {
	Provision(ctx context.Context, req model.ProvisionRequest) (*model.ProvisionResult, error)
	CheckSubdomain(ctx context.Context, name string) model.SubdomainCheck
	Deprovision(ctx context.Context, subdomain string) (*model.DeprovisionResult, error)
	Health(ctx context.Context) model.Health
	ResetAdminPassword(ctx context.Context, subdomain, email, password string) (*model.PasswordReset, error)
	SetTenantStatus(ctx context.Context, subdomain, status string) error
	ListTenants(ctx context.Context) ([]model.Tenant, error)
}

var _ Provisioner = (*core.ProvisionService)(nil)

// writeServiceError maps workflow errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidSubdomain):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, runner.ErrTimeout):
		status = http.StatusGatewayTimeout
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	response.WriteError(w, status, err.Error())
}
