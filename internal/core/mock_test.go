package core

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/provisioner/internal/frappe"
	"github.com/edvin/provisioner/internal/model"
	"github.com/edvin/provisioner/internal/runner"
)

// ---------- Mock BenchCLI ----------

type mockBench struct {
	mock.Mock
}

func (m *mockBench) result(args mock.Arguments) (*runner.Result, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runner.Result), args.Error(1)
}

func (m *mockBench) NewSite(ctx context.Context, site, adminPassword string) (*runner.Result, error) {
	return m.result(m.Called(ctx, site, adminPassword))
}

func (m *mockBench) InstallApp(ctx context.Context, site, app string) (*runner.Result, error) {
	return m.result(m.Called(ctx, site, app))
}

func (m *mockBench) DropSite(ctx context.Context, site string) (*runner.Result, error) {
	return m.result(m.Called(ctx, site))
}

func (m *mockBench) SetupNginx(ctx context.Context) (*runner.Result, error) {
	return m.result(m.Called(ctx))
}

func (m *mockBench) ReloadNginx(ctx context.Context) (*runner.Result, error) {
	return m.result(m.Called(ctx))
}

func (m *mockBench) Ping(ctx context.Context) (*runner.Result, error) {
	return m.result(m.Called(ctx))
}

// ---------- Mock TenantDirectory ----------

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) Preflight(ctx context.Context, subdomain, email string) (*frappe.Preflight, error) {
	args := m.Called(ctx, subdomain, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*frappe.Preflight), args.Error(1)
}

func (m *mockDirectory) SubdomainExists(ctx context.Context, subdomain string) (bool, error) {
	args := m.Called(ctx, subdomain)
	return args.Bool(0), args.Error(1)
}

func (m *mockDirectory) Register(ctx context.Context, reg frappe.Registration) (string, error) {
	args := m.Called(ctx, reg)
	return args.String(0), args.Error(1)
}

func (m *mockDirectory) Remove(ctx context.Context, subdomain string) (bool, error) {
	args := m.Called(ctx, subdomain)
	return args.Bool(0), args.Error(1)
}

func (m *mockDirectory) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tenant), args.Error(1)
}

func (m *mockDirectory) SetStatus(ctx context.Context, subdomain, status string) error {
	return m.Called(ctx, subdomain, status).Error(0)
}

// ---------- Mock SiteAdmin ----------

type mockSites struct {
	mock.Mock
}

func (m *mockSites) ConfigureAdmin(ctx context.Context, site string, admin frappe.AdminUser) (*frappe.AdminCredentials, error) {
	args := m.Called(ctx, site, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*frappe.AdminCredentials), args.Error(1)
}

func (m *mockSites) SeedSettings(ctx context.Context, site, organization string, plan model.PlanType) (bool, error) {
	args := m.Called(ctx, site, organization, plan)
	return args.Bool(0), args.Error(1)
}

func (m *mockSites) ResetPassword(ctx context.Context, site, email, password string) error {
	return m.Called(ctx, site, email, password).Error(0)
}
