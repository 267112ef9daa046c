package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/frappe"
	"github.com/edvin/provisioner/internal/metrics"
	"github.com/edvin/provisioner/internal/model"
	"github.com/edvin/provisioner/internal/platform"
)

const duplicateTenantMessage = "Tenant already exists (idempotent)"

// Provision creates a tenant site end to end. The returned result is never nil
// and lists the steps that completed; the error classifies a failed run and is
// nil for success, including the idempotent duplicate case.
//
// Each external call is made once. Site creation failure aborts without
// cleanup, admin user failure drops the site this run created, and directory
// registration failure leaves an inconsistent tenant flagged for manual repair.
// App install, settings seeding and nginx failures are logged and skipped.
func (s *ProvisionService) Provision(ctx context.Context, req model.ProvisionRequest) (*model.ProvisionResult, error) {
	// Provisioning runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	subdomain := platform.GenerateSubdomain(req.OrganizationName)
	site := platform.SiteName(subdomain, s.opts.ParentDomain, s.opts.Production)
	password := req.AdminPassword
	if password == "" {
		password = platform.NewPassword()
	}
	fullName := req.AdminFullName
	if fullName == "" {
		fullName = req.OrganizationName
	}
	plan := req.PlanType
	if plan == "" {
		plan = model.PlanFree
	}

	// run_id ties together every line of one run, including the detached
	// compensation calls.
	logger := s.log(ctx).With().
		Str("run_id", platform.NewID()).
		Str("site", site).
		Str("subdomain", subdomain).
		Logger()
	logger.Info().
		Str("organization", req.OrganizationName).
		Str("admin_email", req.AdminEmail).
		Str("plan", string(plan)).
		Msg("provisioning started")

	res := model.NewProvisionResult()
	res.Subdomain = subdomain
	res.SiteName = site

	finish := func(err error) (*model.ProvisionResult, error) {
		label := "success"
		if err != nil {
			res.Success = false
			res.Error = err.Error()
			res.ErrorCode = ErrorCode(err)
			label = res.ErrorCode
			logger.Error().Err(err).Strs("steps", res.StepsCompleted).Msg("provisioning failed")
		} else {
			logger.Info().Strs("steps", res.StepsCompleted).Dur("duration", time.Since(start)).Msg("provisioning complete")
		}
		metrics.ProvisionsTotal.WithLabelValues(label).Inc()
		metrics.ProvisionDuration.Observe(time.Since(start).Seconds())
		return res, err
	}

	// Pre-flight. Advisory only: an unreachable directory does not block.
	pre, err := s.dir.Preflight(ctx, subdomain, req.AdminEmail)
	switch {
	case err != nil:
		metrics.StepFailuresTotal.WithLabelValues(model.StepPreflightCheck).Inc()
		logger.Warn().Err(err).Msg("pre-flight check failed, proceeding")
	case pre.SubdomainExists:
		logger.Warn().Msg("tenant already exists, returning existing")
		res.Success = true
		res.Error = duplicateTenantMessage
		res.StepsCompleted = []string{model.StepPreflightDuplicate}
		metrics.ProvisionsTotal.WithLabelValues("duplicate").Inc()
		return res, nil
	case pre.EmailTenants > 0:
		return finish(fmt.Errorf("Email %s already owns a tenant: %w", req.AdminEmail, ErrConflict))
	default:
		res.AddStep(model.StepPreflightCheck)
	}

	// Site.
	created, err := s.createSite(ctx, logger, site, password)
	if err != nil {
		return finish(err)
	}
	if created {
		res.AddStep(model.StepSiteCreated)
	} else {
		res.AddStep(model.StepSiteExists)
	}

	// Apps.
	for _, app := range s.opts.Apps {
		app = strings.TrimSpace(app)
		if app == "" {
			continue
		}
		if s.installApp(ctx, logger, site, app) {
			res.AddStep(model.AppInstalledStep(app))
		}
	}

	// Admin user. The only step with a compensating action.
	creds, err := s.sites.ConfigureAdmin(ctx, site, frappe.AdminUser{
		Email:    req.AdminEmail,
		FullName: fullName,
		Password: password,
	})
	if err != nil {
		metrics.StepFailuresTotal.WithLabelValues(model.StepAdminUserConfigured).Inc()
		if created {
			s.dropFailedSite(ctx, logger, site)
		} else {
			logger.Warn().Msg("site existed before this run, leaving it in place")
		}
		return finish(fmt.Errorf("Admin user creation failed: %w", err))
	}
	res.AddStep(model.StepAdminUserConfigured)
	logger.Info().Bool("user_created", creds.UserCreated).Msg("admin user configured")

	// Settings.
	seeded, err := s.sites.SeedSettings(ctx, site, req.OrganizationName, plan)
	switch {
	case err != nil:
		metrics.StepFailuresTotal.WithLabelValues(model.StepSaaSSettingsSeeded).Inc()
		logger.Warn().Err(err).Msg("settings seeding failed (non-fatal)")
	case !seeded:
		logger.Info().Msg("SaaS Settings doctype not installed, skipping seed")
	default:
		res.AddStep(model.StepSaaSSettingsSeeded)
	}

	// Directory.
	action, err := s.dir.Register(ctx, frappe.Registration{
		Subdomain:        subdomain,
		OrganizationName: req.OrganizationName,
		OwnerEmail:       req.AdminEmail,
		SiteURL:          platform.SiteURL(site, s.opts.Production),
		PlanType:         string(plan),
		APIKey:           creds.APIKey,
		APISecret:        creds.APISecret,
	})
	if err != nil {
		metrics.StepFailuresTotal.WithLabelValues(model.StepMasterDBRegistered).Inc()
		res.AdminPassword = password
		res.APIKey = creds.APIKey
		res.APISecret = creds.APISecret
		res.ManualRemediation = true
		return finish(fmt.Errorf("Site created but Master DB registration failed: %v. Manual fix required: %w", err, ErrInconsistent))
	}
	res.AddStep(model.StepMasterDBRegistered)
	if action == frappe.ActionUnknown {
		logger.Warn().Msg("registration script exited cleanly without a result; verify the directory entry")
	} else {
		logger.Info().Str("action", action).Msg("tenant registered")
	}

	if s.opts.Production && s.configureNginx(ctx, logger) {
		res.AddStep(model.StepNginxConfigured)
	}

	res.Success = true
	res.AdminPassword = password
	res.APIKey = creds.APIKey
	res.APISecret = creds.APISecret
	return finish(nil)
}

// createSite reports whether this call created the site. A site that already
// exists is not an error.
func (s *ProvisionService) createSite(ctx context.Context, logger zerolog.Logger, site, password string) (bool, error) {
	r, err := s.bench.NewSite(ctx, site, password)
	if err != nil {
		metrics.StepFailuresTotal.WithLabelValues(model.StepSiteCreated).Inc()
		return false, fmt.Errorf("bench new-site failed: %w", err)
	}
	if r.OK() {
		logger.Info().Msg("site created")
		return true, nil
	}
	if containsFold(r.Combined(), "already exists") {
		logger.Info().Msg("site already exists, continuing")
		return false, nil
	}
	metrics.StepFailuresTotal.WithLabelValues(model.StepSiteCreated).Inc()
	return false, fmt.Errorf("bench new-site failed: %w", &frappe.ExecutionError{
		Op: "new-site", Site: site, ExitCode: r.ExitCode, Stderr: r.Stderr,
	})
}

func (s *ProvisionService) installApp(ctx context.Context, logger zerolog.Logger, site, app string) bool {
	r, err := s.bench.InstallApp(ctx, site, app)
	switch {
	case err != nil:
		logger.Warn().Err(err).Str("app", app).Msg("install-app failed (non-fatal)")
	case r.OK():
		logger.Info().Str("app", app).Msg("app installed")
		return true
	case containsFold(r.Combined(), "already installed"):
		logger.Info().Str("app", app).Msg("app already installed")
		return true
	default:
		logger.Warn().Str("app", app).Int("exit_code", r.ExitCode).Str("stderr", truncate(r.Stderr, 300)).
			Msg("install-app failed (non-fatal)")
	}
	metrics.StepFailuresTotal.WithLabelValues(model.StepAppInstalledPrefix + app).Inc()
	return false
}

// dropFailedSite is best effort; its failure is logged and the original error stands.
func (s *ProvisionService) dropFailedSite(ctx context.Context, logger zerolog.Logger, site string) {
	logger.Warn().Msg("dropping partially provisioned site")
	r, err := s.bench.DropSite(ctx, site)
	switch {
	case err != nil:
		logger.Error().Err(err).Msg("cleanup of failed site failed")
	case !r.OK():
		logger.Error().Int("exit_code", r.ExitCode).Str("stderr", truncate(r.Stderr, 300)).Msg("cleanup of failed site failed")
	default:
		logger.Info().Msg("failed site dropped")
	}
}

func (s *ProvisionService) configureNginx(ctx context.Context, logger zerolog.Logger) bool {
	r, err := s.bench.SetupNginx(ctx)
	if err != nil || !r.OK() {
		metrics.StepFailuresTotal.WithLabelValues(model.StepNginxConfigured).Inc()
		logger.Warn().Err(err).Msg("bench setup nginx failed (non-fatal)")
		return false
	}
	r, err = s.bench.ReloadNginx(ctx)
	if err != nil || !r.OK() {
		metrics.StepFailuresTotal.WithLabelValues(model.StepNginxConfigured).Inc()
		logger.Warn().Err(err).Msg("nginx reload failed (non-fatal)")
		return false
	}
	logger.Info().Msg("nginx configured and reloaded")
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var (
	_ BenchCLI        = (*frappe.Bench)(nil)
	_ TenantDirectory = (*frappe.Directory)(nil)
	_ SiteAdmin       = (*frappe.TenantSite)(nil)
)
