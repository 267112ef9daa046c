package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edvin/provisioner/internal/config"
	"github.com/edvin/provisioner/internal/model"
)

// SecretHeader mirrors the header the API authenticates on.
const SecretHeader = "X-Provisioning-Secret"

// Per-call deadlines. Provisioning runs the whole workflow server-side, so
// the client waits until the server's own write deadline has passed.
const (
	HealthTimeout      = 5 * time.Second
	CheckTimeout       = 10 * time.Second
	ProvisionTimeout   = config.ServerWriteTimeout + time.Minute
	DeprovisionTimeout = 2 * time.Minute
	ResetTimeout       = 2 * time.Minute
	DefaultTimeout     = 30 * time.Second
)

type Client struct {
	BaseURL    string
	Secret     string
	HTTPClient *http.Client
}

// APIError is a non-2xx reply.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func New(baseURL, secret string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Secret:     secret,
		HTTPClient: &http.Client{},
	}
}

func (c *Client) Health(ctx context.Context) (*model.Health, error) {
	var out model.Health
	if err := c.do(ctx, HealthTimeout, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckSubdomain(ctx context.Context, name string) (*model.SubdomainCheck, error) {
	var out model.SubdomainCheck
	path := "/api/v1/check-subdomain/" + url.PathEscape(name)
	if err := c.do(ctx, CheckTimeout, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProvisionInput is the JSON body of a provisioning call.
type ProvisionInput struct {
	OrganizationName string `json:"organization_name" yaml:"organization_name"`
	AdminEmail       string `json:"admin_email" yaml:"admin_email"`
	AdminPassword    string `json:"admin_password,omitempty" yaml:"admin_password,omitempty"`
	AdminFullName    string `json:"admin_full_name,omitempty" yaml:"admin_full_name,omitempty"`
	PlanType         string `json:"plan_type,omitempty" yaml:"plan_type,omitempty"`
}

// Provision returns the result even when success is false; err is only set
// for transport failures and non-2xx replies.
func (c *Client) Provision(ctx context.Context, in ProvisionInput) (*model.ProvisionResult, error) {
	var out model.ProvisionResult
	if err := c.do(ctx, ProvisionTimeout, http.MethodPost, "/api/v1/provision", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Deprovision(ctx context.Context, subdomain string) (*model.DeprovisionResult, error) {
	var out model.DeprovisionResult
	path := "/api/v1/deprovision/" + url.PathEscape(subdomain)
	if err := c.do(ctx, DeprovisionTimeout, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	var page struct {
		Items []model.Tenant `json:"items"`
	}
	if err := c.do(ctx, DefaultTimeout, http.MethodGet, "/api/v1/tenants", nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *Client) SetTenantStatus(ctx context.Context, subdomain, status string) error {
	path := "/api/v1/tenants/" + url.PathEscape(subdomain) + "/status"
	return c.do(ctx, DefaultTimeout, http.MethodPost, path, map[string]string{"status": status}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, subdomain, email, password string) (*model.PasswordReset, error) {
	var out model.PasswordReset
	path := "/api/v1/tenants/" + url.PathEscape(subdomain) + "/reset-password"
	body := map[string]string{"admin_email": email}
	if password != "" {
		body["password"] = password
	}
	if err := c.do(ctx, ResetTimeout, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Secret != "" {
		req.Header.Set(SecretHeader, c.Secret)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse %s %s response: %w", method, path, err)
	}
	return nil
}
