package core

import (
	"errors"

	"github.com/edvin/provisioner/internal/frappe"
	"github.com/edvin/provisioner/internal/model"
	"github.com/edvin/provisioner/internal/runner"
)

var (
	// ErrConflict means the admin email already owns a tenant on another subdomain.
	ErrConflict = errors.New("conflict")
	// ErrInconsistent means the site and admin user exist but the directory
	// entry does not. It is never retried.
	ErrInconsistent = errors.New("inconsistent state")

	ErrInvalidSubdomain = errors.New("invalid subdomain")
	ErrNotFound         = frappe.ErrNotFound
)

// ErrorCode maps a workflow error to the error_code reported to callers.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConflict):
		return model.ErrorCodeConflict
	case errors.Is(err, ErrInconsistent):
		return model.ErrorCodeInconsistent
	case errors.Is(err, runner.ErrTimeout):
		return model.ErrorCodeTimeout
	}
	// Non-zero exits and transport failures alike.
	return model.ErrorCodeExecution
}
