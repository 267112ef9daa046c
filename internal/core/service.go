package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/config"
	"github.com/edvin/provisioner/internal/frappe"
	"github.com/edvin/provisioner/internal/model"
	"github.com/edvin/provisioner/internal/runner"
)

// BenchCLI is the subset of bench commands the workflow issues.
type BenchCLI interface {
	NewSite(ctx context.Context, site, adminPassword string) (*runner.Result, error)
	InstallApp(ctx context.Context, site, app string) (*runner.Result, error)
	DropSite(ctx context.Context, site string) (*runner.Result, error)
	SetupNginx(ctx context.Context) (*runner.Result, error)
	ReloadNginx(ctx context.Context) (*runner.Result, error)
	Ping(ctx context.Context) (*runner.Result, error)
}

// TenantDirectory is the central tenant registry on the master site.
type TenantDirectory interface {
	Preflight(ctx context.Context, subdomain, email string) (*frappe.Preflight, error)
	SubdomainExists(ctx context.Context, subdomain string) (bool, error)
	Register(ctx context.Context, reg frappe.Registration) (string, error)
	Remove(ctx context.Context, subdomain string) (bool, error)
	ListTenants(ctx context.Context) ([]model.Tenant, error)
	SetStatus(ctx context.Context, subdomain, status string) error
}

// SiteAdmin administers a single tenant site.
type SiteAdmin interface {
	ConfigureAdmin(ctx context.Context, site string, admin frappe.AdminUser) (*frappe.AdminCredentials, error)
	SeedSettings(ctx context.Context, site, organization string, plan model.PlanType) (bool, error)
	ResetPassword(ctx context.Context, site, email, password string) error
}

type Options struct {
	Apps             []string
	ParentDomain     string
	Production       bool
	ExecMode         string
	BackendContainer string
	MasterSite       string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Apps:             cfg.DefaultApps,
		ParentDomain:     cfg.ParentDomain,
		Production:       cfg.IsProduction(),
		ExecMode:         cfg.ExecMode,
		BackendContainer: cfg.BackendContainer,
		MasterSite:       cfg.MasterSite,
	}
}

type ProvisionService struct {
	bench  BenchCLI
	dir    TenantDirectory
	sites  SiteAdmin
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

func NewProvisionService(bench BenchCLI, dir TenantDirectory, sites SiteAdmin, opts Options, logger zerolog.Logger) *ProvisionService {
	return &ProvisionService{
		bench:  bench,
		dir:    dir,
		sites:  sites,
		opts:   opts,
		logger: logger.With().Str("component", "provision").Logger(),
		now:    time.Now,
	}
}

// log prefers the request-scoped logger carried by ctx.
func (s *ProvisionService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}
