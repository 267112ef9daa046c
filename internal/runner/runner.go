// Package runner executes external commands inside the backend execution
// context: this host, a relay container, or a remote host over SSH.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTimeout is returned when a command does not finish within its timeout.
// A non-zero exit is never an error at this layer.
var ErrTimeout = errors.New("command timed out")

// Command is one argv invocation.
type Command struct {
	Args []string
	// Dir is the working directory inside the execution context.
	Dir     string
	Timeout time.Duration
}

// String renders the command for logs and error messages.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Combined returns stdout followed by stderr, for substring checks such as
// "already exists".
func (r *Result) Combined() string {
	if r.Stderr == "" {
		return r.Stdout
	}
	if r.Stdout == "" {
		return r.Stderr
	}
	return r.Stdout + "\n" + r.Stderr
}

func (r *Result) OK() bool {
	return r.ExitCode == 0
}

// Runner runs a command and captures its output and exit code.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// withTimeout derives the per-command context.
func withTimeout(ctx context.Context, cmd Command) (context.Context, context.CancelFunc) {
	if cmd.Timeout > 0 {
		return context.WithTimeout(ctx, cmd.Timeout)
	}
	return context.WithCancel(ctx)
}

// classify maps a finished context to ErrTimeout or the caller's cancellation.
func classify(ctx context.Context, cmd Command) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%s after %s: %w", programName(cmd.Args), cmd.Timeout, ErrTimeout)
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return nil
}

func validate(cmd Command) error {
	if len(cmd.Args) == 0 {
		return errors.New("empty command")
	}
	return nil
}
