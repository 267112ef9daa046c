package core

import (
	"context"
	"fmt"
	"time"

	"github.com/edvin/provisioner/internal/frappe"
	"github.com/edvin/provisioner/internal/metrics"
	"github.com/edvin/provisioner/internal/model"
	"github.com/edvin/provisioner/internal/platform"
)

const subdomainTaken = "Subdomain already taken"

// CheckSubdomain slugifies name and reports whether it is free. A failed
// lookup reports the subdomain as available.
func (s *ProvisionService) CheckSubdomain(ctx context.Context, name string) model.SubdomainCheck {
	subdomain := platform.GenerateSubdomain(name)

	exists, err := s.dir.SubdomainExists(ctx, subdomain)
	if err != nil {
		s.log(ctx).Warn().Err(err).Str("subdomain", subdomain).Msg("subdomain check failed, assuming available")
		return model.SubdomainCheck{Available: true, Subdomain: subdomain}
	}
	if exists {
		return model.SubdomainCheck{Available: false, Subdomain: subdomain, Reason: subdomainTaken}
	}
	return model.SubdomainCheck{Available: true, Subdomain: subdomain}
}

// Deprovision force-drops the tenant site, then removes its directory entry.
// A drop failure is returned; a directory failure is only logged. A site that
// no longer exists counts as dropped.
func (s *ProvisionService) Deprovision(ctx context.Context, subdomain string) (*model.DeprovisionResult, error) {
	if !platform.IsValidSubdomain(subdomain) {
		return nil, fmt.Errorf("%q: %w", subdomain, ErrInvalidSubdomain)
	}
	ctx = context.WithoutCancel(ctx)
	site := s.siteName(subdomain)
	logger := s.log(ctx).With().Str("site", site).Logger()

	r, err := s.bench.DropSite(ctx, site)
	if err != nil {
		metrics.DeprovisionsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("drop site %s: %w", site, err)
	}
	if !r.OK() {
		if !containsFold(r.Combined(), "does not exist") {
			metrics.DeprovisionsTotal.WithLabelValues("failed").Inc()
			return nil, fmt.Errorf("drop site %s: %w", site, &frappe.ExecutionError{
				Op: "drop-site", Site: site, ExitCode: r.ExitCode, Stderr: r.Stderr,
			})
		}
		logger.Info().Msg("site already gone")
	}

	if _, err := s.dir.Remove(ctx, subdomain); err != nil {
		logger.Warn().Err(err).Msg("directory entry removal failed, ignoring")
	}

	metrics.DeprovisionsTotal.WithLabelValues("success").Inc()
	logger.Info().Msg("tenant deprovisioned")
	return &model.DeprovisionResult{Success: true, Message: fmt.Sprintf("Site %s removed", site)}, nil
}

// Health pings the execution context.
func (s *ProvisionService) Health(ctx context.Context) model.Health {
	status := model.HealthHealthy
	r, err := s.bench.Ping(ctx)
	if err != nil || !r.OK() {
		s.log(ctx).Warn().Err(err).Msg("backend health check failed")
		status = model.HealthDegraded
	}
	return model.Health{
		Status:           status,
		ExecMode:         s.opts.ExecMode,
		BackendContainer: s.opts.BackendContainer,
		MasterSite:       s.opts.MasterSite,
		Timestamp:        s.now().UTC().Format(time.RFC3339),
	}
}

// ResetAdminPassword sets a new password for an existing user on the tenant
// site, generating one when password is empty.
func (s *ProvisionService) ResetAdminPassword(ctx context.Context, subdomain, email, password string) (*model.PasswordReset, error) {
	if !platform.IsValidSubdomain(subdomain) {
		return nil, fmt.Errorf("%q: %w", subdomain, ErrInvalidSubdomain)
	}
	if password == "" {
		password = platform.NewPassword()
	}
	site := s.siteName(subdomain)
	if err := s.sites.ResetPassword(ctx, site, email, password); err != nil {
		return nil, err
	}
	s.log(ctx).Info().Str("site", site).Str("email", email).Msg("admin password reset")
	return &model.PasswordReset{Success: true, SiteName: site, AdminEmail: email, AdminPassword: password}, nil
}

func (s *ProvisionService) SetTenantStatus(ctx context.Context, subdomain, status string) error {
	if !platform.IsValidSubdomain(subdomain) {
		return fmt.Errorf("%q: %w", subdomain, ErrInvalidSubdomain)
	}
	if err := s.dir.SetStatus(ctx, subdomain, status); err != nil {
		return err
	}
	s.log(ctx).Info().Str("subdomain", subdomain).Str("status", status).Msg("tenant status updated")
	return nil
}

func (s *ProvisionService) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	return s.dir.ListTenants(ctx)
}

func (s *ProvisionService) siteName(subdomain string) string {
	return platform.SiteName(subdomain, s.opts.ParentDomain, s.opts.Production)
}
