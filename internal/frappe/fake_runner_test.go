package frappe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edvin/provisioner/internal/runner"
)

type recordedCall struct {
	Cmd       runner.Command
	Cancelled bool
}

// fakeRunner answers commands by program name and records every call.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []recordedCall
	handlers map[string]func(runner.Command) (*runner.Result, error)
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{handlers: map[string]func(runner.Command) (*runner.Result, error){}}
}

func (f *fakeRunner) on(program string, fn func(runner.Command) (*runner.Result, error)) {
	f.handlers[program] = fn
}

func (f *fakeRunner) Run(ctx context.Context, cmd runner.Command) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Cmd: cmd, Cancelled: ctx.Err() != nil})
	f.mu.Unlock()

	program := cmd.Args[0]
	if strings.HasSuffix(program, "/python") {
		program = "python"
	}
	if fn, ok := f.handlers[program]; ok {
		return fn(cmd)
	}
	return &runner.Result{}, nil
}

func (f *fakeRunner) programs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Cmd.Args[0]
		if strings.HasSuffix(out[i], "/python") {
			out[i] = "python"
		}
	}
	return out
}

func ok(stdout string) func(runner.Command) (*runner.Result, error) {
	return func(runner.Command) (*runner.Result, error) {
		return &runner.Result{Stdout: stdout}, nil
	}
}

// decodeWrittenScript returns the script delivered by the write command.
func decodeWrittenScript(t *testing.T, cmd runner.Command) string {
	t.Helper()
	require.Len(t, cmd.Args, 6)
	b, err := base64.StdEncoding.DecodeString(cmd.Args[4])
	require.NoError(t, err)
	return string(b)
}

// decodeScriptContext extracts the JSON context embedded in a script.
func decodeScriptContext(t *testing.T, script string) map[string]any {
	t.Helper()
	const marker = `base64.b64decode("`
	start := strings.Index(script, marker)
	require.GreaterOrEqual(t, start, 0)
	rest := script[start+len(marker):]
	encoded := rest[:strings.Index(rest, `"`)]

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	var ctx map[string]any
	require.NoError(t, json.Unmarshal(raw, &ctx))
	return ctx
}

// fakeScripts is a ScriptRunner that returns canned output per call.
type fakeScripts struct {
	calls   []scriptCall
	outputs []Output
	err     error
}

type scriptCall struct {
	Site   string
	Code   string
	Params any
}

func (f *fakeScripts) Run(_ context.Context, site, code string, params any) (Output, error) {
	f.calls = append(f.calls, scriptCall{Site: site, Code: code, Params: params})
	if f.err != nil {
		return nil, f.err
	}
	if len(f.outputs) == 0 {
		return Output{}, nil
	}
	out := f.outputs[0]
	f.outputs = f.outputs[1:]
	return out, nil
}
