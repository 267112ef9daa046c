package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/provisioner/internal/frappe"
	"github.com/edvin/provisioner/internal/model"
	"github.com/edvin/provisioner/internal/runner"
)

// ---------- CheckSubdomain ----------

func TestCheckSubdomain_Available(t *testing.T) {
	f := newFixture(devOptions())
	f.dir.On("SubdomainExists", anyArg, "acme-inc").Return(false, nil)

	got := f.svc.CheckSubdomain(context.Background(), "Acme Inc")
	assert.Equal(t, model.SubdomainCheck{Available: true, Subdomain: "acme-inc"}, got)
}

func TestCheckSubdomain_Taken(t *testing.T) {
	f := newFixture(devOptions())
	f.dir.On("SubdomainExists", anyArg, "acme").Return(true, nil)

	got := f.svc.CheckSubdomain(context.Background(), "acme")
	assert.False(t, got.Available)
	assert.Equal(t, "Subdomain already taken", got.Reason)
}

func TestCheckSubdomain_FailsOpen(t *testing.T) {
	f := newFixture(devOptions())
	f.dir.On("SubdomainExists", anyArg, "acme").Return(false, errors.New("timeout"))

	got := f.svc.CheckSubdomain(context.Background(), "acme")
	assert.True(t, got.Available)
	assert.Empty(t, got.Reason)
}

// ---------- Deprovision ----------

func TestDeprovision_Success(t *testing.T) {
	f := newFixture(devOptions())
	f.bench.On("DropSite", anyArg, "acme.localhost").Return(okRes, nil)
	f.dir.On("Remove", anyArg, "acme").Return(true, nil)

	res, err := f.svc.Deprovision(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, &model.DeprovisionResult{Success: true, Message: "Site acme.localhost removed"}, res)
	f.assertExpectations(t)
}

func TestDeprovision_DirectoryFailureSwallowed(t *testing.T) {
	f := newFixture(devOptions())
	f.bench.On("DropSite", anyArg, "acme.localhost").Return(okRes, nil)
	f.dir.On("Remove", anyArg, "acme").Return(false, errors.New("master down"))

	res, err := f.svc.Deprovision(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestDeprovision_DropFailureSurfaced(t *testing.T) {
	f := newFixture(devOptions())
	f.bench.On("DropSite", anyArg, "acme.localhost").Return(&runner.Result{ExitCode: 1, Stderr: "Access denied"}, nil)

	_, err := f.svc.Deprovision(context.Background(), "acme")
	var execErr *frappe.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Contains(t, err.Error(), "Access denied")
	f.dir.AssertNotCalled(t, "Remove", anyArg, anyArg)
}

func TestDeprovision_DropTimeout(t *testing.T) {
	f := newFixture(devOptions())
	f.bench.On("DropSite", anyArg, anyArg).Return(nil, fmt.Errorf("bench: %w", runner.ErrTimeout))

	_, err := f.svc.Deprovision(context.Background(), "acme")
	assert.ErrorIs(t, err, runner.ErrTimeout)
}

func TestDeprovision_MissingSiteStillRemovesEntry(t *testing.T) {
	f := newFixture(devOptions())
	f.bench.On("DropSite", anyArg, "acme.localhost").Return(&runner.Result{ExitCode: 1, Stderr: "Site acme.localhost does not exist"}, nil)
	f.dir.On("Remove", anyArg, "acme").Return(true, nil)

	res, err := f.svc.Deprovision(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, res.Success)
	f.assertExpectations(t)
}

func TestDeprovision_InvalidSubdomain(t *testing.T) {
	f := newFixture(devOptions())
	for _, sub := range []string{"../etc", "Acme", "a", "acme.localhost", "-x-"} {
		_, err := f.svc.Deprovision(context.Background(), sub)
		assert.ErrorIs(t, err, ErrInvalidSubdomain, sub)
	}
	f.bench.AssertNotCalled(t, "DropSite", anyArg, anyArg)
}

// ---------- Health ----------

func TestHealth(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	opts := Options{ExecMode: "docker-cli", BackendContainer: "backend-1", MasterSite: "erp.localhost"}

	f := newFixture(opts)
	f.svc.now = func() time.Time { return fixed }
	f.bench.On("Ping", anyArg).Return(okRes, nil).Once()
	f.bench.On("Ping", anyArg).Return(nil, errors.New("no such container")).Once()

	h := f.svc.Health(context.Background())
	assert.Equal(t, model.Health{
		Status: "healthy", ExecMode: "docker-cli", BackendContainer: "backend-1",
		MasterSite: "erp.localhost", Timestamp: "2026-03-01T12:00:00Z",
	}, h)

	h = f.svc.Health(context.Background())
	assert.Equal(t, "degraded", h.Status)
}

// ---------- ResetAdminPassword ----------

func TestResetAdminPassword(t *testing.T) {
	f := newFixture(devOptions())
	f.sites.On("ResetPassword", anyArg, "acme.localhost", "admin@acme.test", "newpw").Return(nil)

	res, err := f.svc.ResetAdminPassword(context.Background(), "acme", "admin@acme.test", "newpw")
	require.NoError(t, err)
	assert.Equal(t, &model.PasswordReset{Success: true, SiteName: "acme.localhost", AdminEmail: "admin@acme.test", AdminPassword: "newpw"}, res)
}

func TestResetAdminPassword_GeneratesPassword(t *testing.T) {
	f := newFixture(devOptions())
	f.sites.On("ResetPassword", anyArg, "acme.localhost", "admin@acme.test", anyArg).Return(nil)

	res, err := f.svc.ResetAdminPassword(context.Background(), "acme", "admin@acme.test", "")
	require.NoError(t, err)
	assert.Len(t, res.AdminPassword, 22)
}

func TestResetAdminPassword_UserNotFound(t *testing.T) {
	f := newFixture(devOptions())
	f.sites.On("ResetPassword", anyArg, anyArg, anyArg, anyArg).Return(fmt.Errorf("user: %w", frappe.ErrNotFound))

	_, err := f.svc.ResetAdminPassword(context.Background(), "acme", "ghost@acme.test", "pw")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ---------- SetTenantStatus / ListTenants ----------

func TestSetTenantStatus(t *testing.T) {
	f := newFixture(devOptions())
	f.dir.On("SetStatus", anyArg, "acme", "Suspended").Return(nil)

	require.NoError(t, f.svc.SetTenantStatus(context.Background(), "acme", "Suspended"))
	assert.ErrorIs(t, f.svc.SetTenantStatus(context.Background(), "AC", "Active"), ErrInvalidSubdomain)
}

func TestListTenants(t *testing.T) {
	f := newFixture(devOptions())
	tenants := []model.Tenant{{Subdomain: "acme", Status: "Active"}}
	f.dir.On("ListTenants", anyArg).Return(tenants, nil)

	got, err := f.svc.ListTenants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tenants, got)
}

// ---------- ErrorCode ----------

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, "conflict", ErrorCode(fmt.Errorf("x: %w", ErrConflict)))
	assert.Equal(t, "inconsistent", ErrorCode(fmt.Errorf("x: %w", ErrInconsistent)))
	assert.Equal(t, "timeout", ErrorCode(fmt.Errorf("x: %w", runner.ErrTimeout)))
	assert.Equal(t, "execution_error", ErrorCode(&frappe.ExecutionError{Op: "script"}))
	assert.Equal(t, "execution_error", ErrorCode(errors.New("dial tcp: refused")))
}
