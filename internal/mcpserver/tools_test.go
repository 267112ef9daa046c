package mcpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/provisioner/internal/client"
	"github.com/edvin/provisioner/internal/model"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Health(ctx context.Context) (*model.Health, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Health), args.Error(1)
}

func (m *mockAPI) CheckSubdomain(ctx context.Context, name string) (*model.SubdomainCheck, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SubdomainCheck), args.Error(1)
}

func (m *mockAPI) Provision(ctx context.Context, in client.ProvisionInput) (*model.ProvisionResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProvisionResult), args.Error(1)
}

func (m *mockAPI) Deprovision(ctx context.Context, subdomain string) (*model.DeprovisionResult, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeprovisionResult), args.Error(1)
}

func (m *mockAPI) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tenant), args.Error(1)
}

func toolsFor(t *testing.T, cfg *Config, api API) map[string]server.ServerTool {
	t.Helper()
	out := map[string]server.ServerTool{}
	for _, st := range BuildTools(cfg, func(mcp.CallToolRequest) API { return api }, zerolog.Nop()) {
		out[st.Tool.Name] = st
	}
	return out
}

func call(t *testing.T, st server.ServerTool, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = st.Tool.Name
	req.Params.Arguments = args
	res, err := st.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestBuildTools_Names(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)

	tools := toolsFor(t, cfg, new(mockAPI))

	for _, name := range []string{"check_subdomain", "provision_tenant", "deprovision_tenant", "service_health", "list_tenants"} {
		assert.Contains(t, tools, name)
	}
	assert.Len(t, tools, 5)
}

func TestBuildTools_Overrides(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
overrides:
  deprovision_tenant:
    disabled: true
  list_tenants:
    description: Show every tenant.
`))
	require.NoError(t, err)

	tools := toolsFor(t, cfg, new(mockAPI))

	assert.NotContains(t, tools, "deprovision_tenant")
	assert.Equal(t, "Show every tenant.", tools["list_tenants"].Tool.Description)
}

func TestCheckSubdomainTool(t *testing.T) {
	api := new(mockAPI)
	api.On("CheckSubdomain", mock.Anything, "Acme Inc").Return(&model.SubdomainCheck{Available: true, Subdomain: "acme-inc"}, nil)
	cfg, _ := ParseConfig(nil)

	res := call(t, toolsFor(t, cfg, api)["check_subdomain"], map[string]any{"name": "Acme Inc"})

	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"available":true,"subdomain":"acme-inc"}`, text(t, res))
}

func TestCheckSubdomainTool_MissingArgument(t *testing.T) {
	api := new(mockAPI)
	cfg, _ := ParseConfig(nil)

	res := call(t, toolsFor(t, cfg, api)["check_subdomain"], map[string]any{})

	assert.True(t, res.IsError)
	api.AssertNotCalled(t, "CheckSubdomain", mock.Anything, mock.Anything)
}

func TestProvisionTenantTool(t *testing.T) {
	api := new(mockAPI)
	api.On("Provision", mock.Anything, client.ProvisionInput{
		OrganizationName: "Acme Inc",
		AdminEmail:       "owner@acme.io",
		PlanType:         "Pro",
	}).Return(&model.ProvisionResult{Success: true, SiteName: "acme-inc.localhost", StepsCompleted: []string{"site_created"}}, nil)
	cfg, _ := ParseConfig(nil)

	res := call(t, toolsFor(t, cfg, api)["provision_tenant"], map[string]any{
		"organization_name": "Acme Inc",
		"admin_email":       "owner@acme.io",
		"plan_type":         "Pro",
	})

	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "acme-inc.localhost")
	api.AssertExpectations(t)
}

func TestProvisionTenantTool_FailedResultIsToolError(t *testing.T) {
	api := new(mockAPI)
	api.On("Provision", mock.Anything, mock.Anything).Return(&model.ProvisionResult{
		Error:          "Email owner@acme.io already owns a tenant",
		ErrorCode:      model.ErrorCodeConflict,
		StepsCompleted: []string{"preflight_check"},
	}, nil)
	cfg, _ := ParseConfig(nil)

	res := call(t, toolsFor(t, cfg, api)["provision_tenant"], map[string]any{
		"organization_name": "Acme Inc",
		"admin_email":       "owner@acme.io",
	})

	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), `"error_code":"conflict"`)
}

func TestDeprovisionTool_APIError(t *testing.T) {
	api := new(mockAPI)
	api.On("Deprovision", mock.Anything, "acme-inc").Return(nil, errors.New("status 504: timed out"))
	cfg, _ := ParseConfig(nil)

	res := call(t, toolsFor(t, cfg, api)["deprovision_tenant"], map[string]any{"subdomain": "acme-inc"})

	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "504")
}

func TestServiceHealthAndListTenants(t *testing.T) {
	api := new(mockAPI)
	api.On("Health", mock.Anything).Return(&model.Health{Status: "healthy"}, nil)
	api.On("ListTenants", mock.Anything).Return([]model.Tenant{{Subdomain: "acme-inc"}}, nil)
	cfg, _ := ParseConfig(nil)
	tools := toolsFor(t, cfg, api)

	assert.Contains(t, text(t, call(t, tools["service_health"], nil)), `"status":"healthy"`)
	assert.Contains(t, text(t, call(t, tools["list_tenants"], nil)), `"subdomain":"acme-inc"`)
}

func TestSessionClient(t *testing.T) {
	base := client.New("http://api", "configured")

	var req mcp.CallToolRequest
	req.Header = http.Header{}
	assert.Same(t, base, sessionClient(base, req))

	req.Header.Set("Authorization", "Bearer from-session")
	c, ok := sessionClient(base, req).(*client.Client)
	require.True(t, ok)
	assert.Equal(t, "from-session", c.Secret)
	assert.Equal(t, "configured", base.Secret)
}

func TestServer_Healthz(t *testing.T) {
	cfg, _ := ParseConfig(nil)
	s := New(cfg, zerolog.Nop())
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("secret: abc\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8001", cfg.APIURL)
	assert.Equal(t, "abc", cfg.Secret)
	assert.NotEmpty(t, cfg.Instructions)
}
