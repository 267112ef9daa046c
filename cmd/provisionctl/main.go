package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/edvin/provisioner/internal/client"
	"github.com/edvin/provisioner/internal/ctl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	apiURL := fs.String("api", envOr("PROVISIONER_API_URL", "http://localhost:8001"), "Provisioning API base URL")
	secret := fs.String("secret", "", "Provisioning secret (default: $"+ctl.SecretEnv+")")

	var err error
	switch os.Args[1] {
	case "health":
		fs.Parse(os.Args[2:])
		err = ctl.New(*apiURL, *secret).Health(ctx)

	case "check":
		fs.Parse(os.Args[2:])
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: provisionctl check [-api URL] <organization-name>")
			os.Exit(1)
		}
		err = ctl.New(*apiURL, *secret).Check(ctx, fs.Arg(0))

	case "provision":
		file := fs.String("f", "", "Path to tenants YAML file")
		org := fs.String("org", "", "Organization name")
		email := fs.String("email", "", "Admin email")
		name := fs.String("name", "", "Admin full name")
		plan := fs.String("plan", "", "Plan type (Free, Pro, Enterprise)")
		fs.Parse(os.Args[2:])

		switch {
		case *file != "":
			cfg, lerr := ctl.LoadBatch(*file)
			if lerr != nil {
				fail(lerr)
			}
			url, sec := *apiURL, *secret
			if cfg.APIURL != "" {
				url = cfg.APIURL
			}
			if sec == "" {
				sec = cfg.Secret
			}
			err = ctl.New(url, sec).ProvisionBatch(ctx, cfg)
		case *org != "" && *email != "":
			err = ctl.New(*apiURL, *secret).Provision(ctx, client.ProvisionInput{
				OrganizationName: *org,
				AdminEmail:       *email,
				AdminFullName:    *name,
				PlanType:         *plan,
			})
		default:
			fmt.Fprintln(os.Stderr, "Error: either -f or both -org and -email are required")
			fs.Usage()
			os.Exit(1)
		}

	case "deprovision":
		fs.Parse(os.Args[2:])
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: provisionctl deprovision [-api URL] <subdomain>")
			os.Exit(1)
		}
		err = ctl.New(*apiURL, *secret).Deprovision(ctx, fs.Arg(0))

	case "tenants":
		asJSON := fs.Bool("json", false, "Print JSON instead of a table")
		fs.Parse(os.Args[2:])
		err = ctl.New(*apiURL, *secret).Tenants(ctx, *asJSON)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  provisionctl health
  provisionctl check <organization-name>
  provisionctl provision -f <tenants.yaml>
  provisionctl provision -org <name> -email <admin-email> [-name <full name>] [-plan Free|Pro|Enterprise]
  provisionctl deprovision <subdomain>
  provisionctl tenants [-json]

Commands:
  health        Show service and backend health
  check         Check whether the subdomain derived from a name is free
  provision     Provision one tenant, or every tenant in a YAML file
  deprovision   Drop a tenant site and its directory entry
  tenants       List tenants from the directory

Flags:
  -api string      Provisioning API base URL (default: $PROVISIONER_API_URL or http://localhost:8001)
  -secret string   Provisioning secret (default: $PROVISIONING_API_SECRET)`)
}
