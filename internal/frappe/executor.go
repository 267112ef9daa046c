// Package frappe drives a Frappe bench: the bench CLI, and Python scripts run
// inside a site session.
package frappe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/config"
	"github.com/edvin/provisioner/internal/platform"
	"github.com/edvin/provisioner/internal/runner"
)

// ScriptRunner runs Python code inside a session on site.
type ScriptRunner interface {
	Run(ctx context.Context, site, code string, params any) (Output, error)
}

// Executor delivers scripts to the bench as base64 scratch files, so no
// caller value ever reaches a shell or the Python source unescaped.
type Executor struct {
	runner    runner.Runner
	benchPath string
	timeouts  config.Timeouts
	logger    zerolog.Logger
}

func NewExecutor(r runner.Runner, benchPath string, timeouts config.Timeouts, logger zerolog.Logger) *Executor {
	return &Executor{
		runner:    r,
		benchPath: benchPath,
		timeouts:  timeouts,
		logger:    logger.With().Str("component", "script-executor").Logger(),
	}
}

// scriptContext is decoded by the prelude as the only source of variable data.
type scriptContext struct {
	Site      string `json:"site"`
	SitesPath string `json:"sites_path"`
	BenchPath string `json:"bench_path"`
	Params    any    `json:"params"`
}

const preludeTemplate = `import base64
import json
import os
import sys

_ctx = json.loads(base64.b64decode("%s").decode("utf-8"))
params = _ctx["params"] or {}


def emit(obj):
    sys.stdout.write("%s" + json.dumps(obj, default=str) + "\n")
    sys.stdout.flush()


for _d in ("/home/frappe/logs", os.path.join(_ctx["bench_path"], "logs"), os.path.join(_ctx["sites_path"], _ctx["site"], "logs")):
    os.makedirs(_d, exist_ok=True)

import frappe

frappe.init(site=_ctx["site"], sites_path=_ctx["sites_path"])
frappe.connect()
try:
%s
finally:
    frappe.destroy()
`

// BuildScript wraps code in a session against site. params is exposed to
// code as the dict `params`; code reports its result with emit(obj).
func (e *Executor) BuildScript(site, code string, params any) (string, error) {
	ctxJSON, err := json.Marshal(scriptContext{
		Site:      site,
		SitesPath: e.sitesPath(),
		BenchPath: e.benchPath,
		Params:    params,
	})
	if err != nil {
		return "", fmt.Errorf("encode script params: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(ctxJSON)
	return fmt.Sprintf(preludeTemplate, encoded, ResultMarker, indent(code)), nil
}

// Run executes code on site and parses its result. A non-zero exit returns an
// *ExecutionError; a timeout wraps runner.ErrTimeout. The scratch file is
// removed on every path, and a failed removal is only logged.
func (e *Executor) Run(ctx context.Context, site, code string, params any) (Output, error) {
	script, err := e.BuildScript(site, code, params)
	if err != nil {
		return nil, err
	}
	scratch := path.Join("/tmp", platform.NewName("_prov_")+".py")

	defer e.remove(ctx, scratch)

	write, err := e.runner.Run(ctx, runner.Command{
		Args: []string{
			"sh", "-c", `printf '%s' "$1" | base64 -d > "$2"`, "sh",
			base64.StdEncoding.EncodeToString([]byte(script)), scratch,
		},
		Timeout: e.timeouts.ScriptWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}
	if !write.OK() {
		return nil, &ExecutionError{Op: "write script", Site: site, ExitCode: write.ExitCode, Stderr: write.Stderr}
	}

	res, err := e.runner.Run(ctx, runner.Command{
		Args:    []string{path.Join(e.benchPath, "env", "bin", "python"), scratch},
		Dir:     e.sitesPath(),
		Timeout: e.timeouts.Script,
	})
	if err != nil {
		return nil, fmt.Errorf("run script on %s: %w", site, err)
	}
	if !res.OK() {
		e.logger.Error().
			Str("site", site).
			Int("exit_code", res.ExitCode).
			Str("stdout", tailString(res.Stdout, 1000)).
			Msg("script failed")
		return nil, &ExecutionError{Op: "script", Site: site, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	out := ParseOutput(res.Stdout)
	if len(out) == 0 {
		e.logger.Warn().Str("site", site).Str("stdout", tailString(res.Stdout, 300)).Msg("no JSON result in script output")
	}
	return out, nil
}

// remove deletes the scratch file even when ctx is already cancelled.
func (e *Executor) remove(ctx context.Context, scratch string) {
	res, err := e.runner.Run(context.WithoutCancel(ctx), runner.Command{
		Args:    []string{"rm", "-f", scratch},
		Timeout: e.timeouts.ScriptDelete,
	})
	switch {
	case err != nil:
		e.logger.Warn().Err(err).Str("file", scratch).Msg("failed to remove script")
	case !res.OK():
		e.logger.Warn().Int("exit_code", res.ExitCode).Str("file", scratch).Msg("failed to remove script")
	}
}

// Scripts must run from the sites directory so frappe resolves relative
// site log paths.
func (e *Executor) sitesPath() string {
	return path.Join(e.benchPath, "sites")
}

func indent(code string) string {
	code = strings.Trim(code, "\n")
	if strings.TrimSpace(code) == "" {
		return "    pass"
	}
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = "    " + l
		}
	}
	return strings.Join(lines, "\n")
}

func tailString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
