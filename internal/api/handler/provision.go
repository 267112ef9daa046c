package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/api/request"
	"github.com/edvin/provisioner/internal/api/response"
)

type Provision struct {
	svc Provisioner
}

func NewProvision(svc Provisioner) *Provision {
	return &Provision{svc: svc}
}

// CheckSubdomain godoc
//
//	@Summary		Check subdomain availability
//	@Description	The name is slugified first. A failed lookup reports available.
//	@Tags			Provisioning
//	@Security		ProvisioningSecret
//	@Param			name path string true "Organization name or subdomain"
//	@Success		200 {object} model.SubdomainCheck
//	@Failure		401 {object} response.ErrorResponse
//	@Router			/check-subdomain/{name} [get]
func (h *Provision) CheckSubdomain(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		response.WriteError(w, http.StatusBadRequest, "missing required name")
		return
	}
	response.WriteJSON(w, http.StatusOK, h.svc.CheckSubdomain(r.Context(), name))
}

// Create godoc
//
//	@Summary		Provision a tenant
//	@Description	Runs the full provisioning workflow. Workflow failures are reported in the body with success=false.
//	@Tags			Provisioning
//	@Security		ProvisioningSecret
//	@Param			body body request.Provision true "Tenant details"
//	@Success		200 {object} model.ProvisionResult
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		401 {object} response.ErrorResponse
//	@Failure		429 {object} response.ErrorResponse
//	@Router			/provision [post]
func (h *Provision) Create(w http.ResponseWriter, r *http.Request) {
	var req request.Provision
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Provision(r.Context(), req.Model())
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("error_code", res.ErrorCode).Msg("provisioning did not complete")
	}
	response.WriteJSON(w, http.StatusOK, res)
}

// Deprovision godoc
//
//	@Summary		Remove a tenant site
//	@Description	Force-drops the site, then removes the directory entry (best effort).
//	@Tags			Provisioning
//	@Security		ProvisioningSecret
//	@Param			subdomain path string true "Tenant subdomain"
//	@Success		200 {object} model.DeprovisionResult
//	@Failure		400 {object} response.ErrorResponse
//	@Failure		401 {object} response.ErrorResponse
//	@Failure		500 {object} response.ErrorResponse
//	@Failure		504 {object} response.ErrorResponse
//	@Router			/deprovision/{subdomain} [delete]
func (h *Provision) Deprovision(w http.ResponseWriter, r *http.Request) {
	subdomain, err := request.RequireSubdomain(chi.URLParam(r, "subdomain"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Deprovision(r.Context(), subdomain)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, res)
}
