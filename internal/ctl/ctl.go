package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/edvin/provisioner/internal/client"
)

// SecretEnv is read when no secret is given on the command line or in a batch file.
const SecretEnv = "PROVISIONING_API_SECRET"

// CLI runs provisionctl commands against one API endpoint.
type CLI struct {
	Client *client.Client
	Out    io.Writer
}

func New(apiURL, secret string) *CLI {
	if secret == "" {
		secret = os.Getenv(SecretEnv)
	}
	return &CLI{Client: client.New(apiURL, secret), Out: os.Stdout}
}

func (c *CLI) Health(ctx context.Context) error {
	h, err := c.Client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "status:    %s\n", h.Status)
	fmt.Fprintf(c.Out, "exec mode: %s\n", h.ExecMode)
	fmt.Fprintf(c.Out, "container: %s\n", h.BackendContainer)
	fmt.Fprintf(c.Out, "master:    %s\n", h.MasterSite)
	if h.Status != "healthy" {
		return fmt.Errorf("backend is %s", h.Status)
	}
	return nil
}

func (c *CLI) Check(ctx context.Context, name string) error {
	res, err := c.Client.CheckSubdomain(ctx, name)
	if err != nil {
		return err
	}
	if res.Available {
		fmt.Fprintf(c.Out, "%s is available\n", res.Subdomain)
		return nil
	}
	fmt.Fprintf(c.Out, "%s is not available: %s\n", res.Subdomain, res.Reason)
	return nil
}

// Provision provisions one tenant and prints the credentials once.
func (c *CLI) Provision(ctx context.Context, in client.ProvisionInput) error {
	res, err := c.Client.Provision(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "Tenant %q -> %s\n", in.OrganizationName, res.SiteName)
	fmt.Fprintf(c.Out, "  steps: %s\n", strings.Join(res.StepsCompleted, ", "))
	if !res.Success {
		if res.ManualRemediation {
			fmt.Fprintln(c.Out, "  MANUAL REMEDIATION REQUIRED: site exists but is not registered")
		}
		return fmt.Errorf("provision %s: %s (%s)", in.OrganizationName, res.Error, res.ErrorCode)
	}
	if res.AdminPassword != "" {
		fmt.Fprintf(c.Out, "  admin password: %s\n", res.AdminPassword)
	}
	if res.APIKey != "" {
		fmt.Fprintf(c.Out, "  api key:        %s\n", res.APIKey)
		fmt.Fprintf(c.Out, "  api secret:     %s\n", res.APISecret)
	}
	return nil
}

// ProvisionBatch provisions every tenant in the file in order and keeps going
// past failures. The returned error counts the failures.
func (c *CLI) ProvisionBatch(ctx context.Context, cfg *BatchConfig) error {
	failed := 0
	for _, t := range cfg.Tenants {
		if err := c.Provision(ctx, t); err != nil {
			fmt.Fprintf(c.Out, "  error: %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tenants failed", failed, len(cfg.Tenants))
	}
	return nil
}

func (c *CLI) Deprovision(ctx context.Context, subdomain string) error {
	res, err := c.Client.Deprovision(ctx, subdomain)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, res.Message)
	return nil
}

func (c *CLI) Tenants(ctx context.Context, asJSON bool) error {
	tenants, err := c.Client.ListTenants(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(c.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(tenants)
	}

	tw := tabwriter.NewWriter(c.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBDOMAIN\tORGANIZATION\tOWNER\tPLAN\tSTATUS")
	for _, t := range tenants {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Subdomain, t.OrganizationName, t.OwnerEmail, t.PlanType, t.Status)
	}
	return tw.Flush()
}
