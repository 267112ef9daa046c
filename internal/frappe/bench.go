package frappe

import (
	"context"
	"time"

	"github.com/edvin/provisioner/internal/config"
	"github.com/edvin/provisioner/internal/runner"
)

// Bench wraps the bench CLI. Results are returned as-is; callers decide what
// a non-zero exit means.
type Bench struct {
	runner         runner.Runner
	path           string
	dbRootPassword string
	timeouts       config.Timeouts
}

func NewBench(r runner.Runner, cfg *config.Config) *Bench {
	return &Bench{
		runner:         r,
		path:           cfg.BenchPath,
		dbRootPassword: cfg.DBRootPassword,
		timeouts:       cfg.Timeouts,
	}
}

func (b *Bench) NewSite(ctx context.Context, site, adminPassword string) (*runner.Result, error) {
	return b.bench(ctx, b.timeouts.SiteCreate,
		"new-site", site,
		"--admin-password", adminPassword,
		"--db-root-password", b.dbRootPassword,
		"--no-mariadb-socket",
	)
}

func (b *Bench) InstallApp(ctx context.Context, site, app string) (*runner.Result, error) {
	return b.bench(ctx, b.timeouts.AppInstall, "--site", site, "install-app", app)
}

// DropSite removes the site and its database without a backup prompt.
func (b *Bench) DropSite(ctx context.Context, site string) (*runner.Result, error) {
	return b.bench(ctx, b.timeouts.SiteDrop,
		"drop-site", site,
		"--db-root-password", b.dbRootPassword,
		"--force",
	)
}

func (b *Bench) SetupNginx(ctx context.Context) (*runner.Result, error) {
	return b.bench(ctx, b.timeouts.Nginx, "setup", "nginx", "--yes")
}

func (b *Bench) ReloadNginx(ctx context.Context) (*runner.Result, error) {
	return b.runner.Run(ctx, runner.Command{
		Args:    []string{"sudo", "nginx", "-s", "reload"},
		Timeout: b.timeouts.NginxReload,
	})
}

// Ping checks that the execution context accepts commands at all.
func (b *Bench) Ping(ctx context.Context) (*runner.Result, error) {
	return b.runner.Run(ctx, runner.Command{
		Args:    []string{"echo", "ok"},
		Timeout: b.timeouts.Health,
	})
}

func (b *Bench) bench(ctx context.Context, timeout time.Duration, args ...string) (*runner.Result, error) {
	return b.runner.Run(ctx, runner.Command{
		Args:    append([]string{"bench"}, args...),
		Dir:     b.path,
		Timeout: timeout,
	})
}
