package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/client"
	"github.com/edvin/provisioner/internal/model"
)

// API is the subset of *client.Client the tools call.
type API interface {
	Health(ctx context.Context) (*model.Health, error)
	CheckSubdomain(ctx context.Context, name string) (*model.SubdomainCheck, error)
	Provision(ctx context.Context, in client.ProvisionInput) (*model.ProvisionResult, error)
	Deprovision(ctx context.Context, subdomain string) (*model.DeprovisionResult, error)
	ListTenants(ctx context.Context) ([]model.Tenant, error)
}

// apiFor picks the API to use for one tool call.
type apiFor func(req mcp.CallToolRequest) API

type tools struct {
	api    apiFor
	logger zerolog.Logger
}

// BuildTools returns the provisioning tools, minus any disabled in cfg.
func BuildTools(cfg *Config, api apiFor, logger zerolog.Logger) []server.ServerTool {
	t := &tools{api: api, logger: logger}

	all := []server.ServerTool{
		{
			Tool: mcp.NewTool("check_subdomain",
				mcp.WithDescription("Derive the subdomain for an organization name and report whether it is free."),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithString("name", mcp.Required(), mcp.Description("Organization name or subdomain")),
			),
			Handler: t.checkSubdomain,
		},
		{
			Tool: mcp.NewTool("provision_tenant",
				mcp.WithDescription("Create a tenant site, install apps, create the admin user and register it in the directory. Returns credentials once."),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithString("organization_name", mcp.Required(), mcp.Description("3-50 letters, digits, space, hyphen, underscore or dot")),
				mcp.WithString("admin_email", mcp.Required(), mcp.Description("Email of the tenant administrator")),
				mcp.WithString("admin_full_name", mcp.Description("Defaults to the organization name")),
				mcp.WithString("plan_type", mcp.Description("Free, Pro or Enterprise"), mcp.Enum("Free", "Pro", "Enterprise")),
			),
			Handler: t.provisionTenant,
		},
		{
			Tool: mcp.NewTool("deprovision_tenant",
				mcp.WithDescription("Drop a tenant site and remove it from the directory. Irreversible."),
				mcp.WithDestructiveHintAnnotation(true),
				mcp.WithString("subdomain", mcp.Required(), mcp.Description("Tenant subdomain")),
			),
			Handler: t.deprovisionTenant,
		},
		{
			Tool: mcp.NewTool("service_health",
				mcp.WithDescription("Report whether the provisioning backend can run commands."),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: t.serviceHealth,
		},
		{
			Tool: mcp.NewTool("list_tenants",
				mcp.WithDescription("List tenants registered in the directory."),
				mcp.WithReadOnlyHintAnnotation(true),
			),
			Handler: t.listTenants,
		},
	}

	var out []server.ServerTool
	for _, st := range all {
		o := cfg.override(st.Tool.Name)
		if o.Disabled {
			continue
		}
		if o.Description != "" {
			st.Tool.Description = o.Description
		}
		out = append(out, st)
	}
	return out
}

func (t *tools) checkSubdomain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := t.api(req).CheckSubdomain(ctx, name)
	return t.result(req, res, err)
}

func (t *tools) provisionTenant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	org, err := req.RequireString("organization_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	email, err := req.RequireString("admin_email")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := t.api(req).Provision(ctx, client.ProvisionInput{
		OrganizationName: org,
		AdminEmail:       email,
		AdminFullName:    req.GetString("admin_full_name", ""),
		PlanType:         req.GetString("plan_type", ""),
	})
	if err == nil && !res.Success {
		// Keep the partial result visible to the agent.
		data, _ := json.Marshal(res)
		return mcp.NewToolResultError(string(data)), nil
	}
	return t.result(req, res, err)
}

func (t *tools) deprovisionTenant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sub, err := req.RequireString("subdomain")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := t.api(req).Deprovision(ctx, sub)
	return t.result(req, res, err)
}

func (t *tools) serviceHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.api(req).Health(ctx)
	return t.result(req, res, err)
}

func (t *tools) listTenants(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.api(req).ListTenants(ctx)
	return t.result(req, res, err)
}

// result renders v as JSON text. API errors become tool errors, not protocol
// errors, so the agent can read them.
func (t *tools) result(req mcp.CallToolRequest, v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		t.logger.Warn().Err(err).Str("tool", req.Params.Name).Msg("tool call failed")
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %s", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
