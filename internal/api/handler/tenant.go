package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/provisioner/internal/api/request"
	"github.com/edvin/provisioner/internal/api/response"
)

type Tenant struct {
	svc Provisioner
}

func NewTenant(svc Provisioner) *Tenant {
	return &Tenant{svc: svc}
}

// List godoc
//
//	@Summary		List tenants in the directory
//	@Tags			Tenants
//	@Security		ProvisioningSecret
//	@Success		200 {object} response.ListResponse{items=[]model.Tenant}
//	@Failure		401 {object} response.ErrorResponse
//	@Failure		500 {object} response.ErrorResponse
//	@Router			/tenants [get]
func (h *Tenant) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.svc.ListTenants(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteList(w, tenants, len(tenants))
}

// SetStatus godoc
//
//	@Summary		Change a tenant's directory status
//	@Tags			Tenants
//	@Security		ProvisioningSecret
//	@Param			subdomain path string true "Tenant subdomain"
//	@Param			body body request.TenantStatus true "New status"
//	@Success		204
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/tenants/{subdomain}/status [post]
func (h *Tenant) SetStatus(w http.ResponseWriter, r *http.Request) {
	subdomain, err := request.RequireSubdomain(chi.URLParam(r, "subdomain"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req request.TenantStatus
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SetTenantStatus(r.Context(), subdomain, req.Status); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword godoc
//
//	@Summary		Reset the admin password on a tenant site
//	@Description	Generates a password when none is given. The user must already exist.
//	@Tags			Tenants
//	@Security		ProvisioningSecret
//	@Param			subdomain path string true "Tenant subdomain"
//	@Param			body body request.ResetPassword true "Admin user"
//	@Success		200 {object} model.PasswordReset
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		404 {object} response.ErrorResponse
//	@Router			/tenants/{subdomain}/reset-password [post]
func (h *Tenant) ResetPassword(w http.ResponseWriter, r *http.Request) {
	subdomain, err := request.RequireSubdomain(chi.URLParam(r, "subdomain"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req request.ResetPassword
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.ResetAdminPassword(r.Context(), subdomain, req.AdminEmail, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, res)
}
