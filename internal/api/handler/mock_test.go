package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/provisioner/internal/model"
)

// mockProvisioner implements Provisioner for handler tests.
type mockProvisioner struct {
	mock.Mock
}

func (m *mockProvisioner) Provision(ctx context.Context, req model.ProvisionRequest) (*model.ProvisionResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*model.ProvisionResult), args.Error(1)
}

func (m *mockProvisioner) CheckSubdomain(ctx context.Context, name string) model.SubdomainCheck {
	args := m.Called(ctx, name)
	return args.Get(0).(model.SubdomainCheck)
}

func (m *mockProvisioner) Deprovision(ctx context.Context, subdomain string) (*model.DeprovisionResult, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeprovisionResult), args.Error(1)
}

func (m *mockProvisioner) Health(ctx context.Context) model.Health {
	args := m.Called(ctx)
	return args.Get(0).(model.Health)
}

func (m *mockProvisioner) ResetAdminPassword(ctx context.Context, subdomain, email, password string) (*model.PasswordReset, error) {
	args := m.Called(ctx, subdomain, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PasswordReset), args.Error(1)
}

func (m *mockProvisioner) SetTenantStatus(ctx context.Context, subdomain, status string) error {
	args := m.Called(ctx, subdomain, status)
	return args.Error(0)
}

func (m *mockProvisioner) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tenant), args.Error(1)
}
