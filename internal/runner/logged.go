package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/metrics"
)

const maxLoggedArg = 96

// Logged records one structured log line and the command metrics for every
// invocation of the wrapped Runner.
type Logged struct {
	next   Runner
	logger zerolog.Logger
}

func WithLogging(next Runner, logger zerolog.Logger) *Logged {
	return &Logged{next: next, logger: logger.With().Str("component", "runner").Logger()}
}

func (l *Logged) Run(ctx context.Context, cmd Command) (*Result, error) {
	program := programName(cmd.Args)
	base := l.logger
	// Prefer the request-scoped logger so lines carry the request id.
	if reqLogger := zerolog.Ctx(ctx); reqLogger.GetLevel() != zerolog.Disabled {
		base = reqLogger.With().Str("component", "runner").Logger()
	}
	logger := base.With().Str("program", program).Strs("args", redactArgs(cmd.Args)).Logger()

	logger.Info().Dur("timeout", cmd.Timeout).Msg("running command")

	res, err := l.next.Run(ctx, cmd)
	switch {
	case errors.Is(err, ErrTimeout):
		metrics.CommandsTotal.WithLabelValues(program, "timeout").Inc()
		logger.Error().Err(err).Msg("command timed out")
		return nil, err
	case err != nil:
		metrics.CommandsTotal.WithLabelValues(program, "error").Inc()
		logger.Error().Err(err).Msg("command failed to run")
		return nil, err
	}

	metrics.CommandDuration.WithLabelValues(program).Observe(res.Duration.Seconds())
	if res.ExitCode != 0 {
		metrics.CommandsTotal.WithLabelValues(program, "nonzero").Inc()
		logger.Error().
			Int("exit_code", res.ExitCode).
			Dur("duration", res.Duration).
			Str("stderr", tail(res.Stderr, 512)).
			Msg("command exited non-zero")
		return res, nil
	}

	metrics.CommandsTotal.WithLabelValues(program, "ok").Inc()
	logger.Info().Dur("duration", res.Duration).Msg("command succeeded")
	return res, nil
}

// Close releases the wrapped runner's resources, if it holds any.
func (l *Logged) Close() error {
	if c, ok := l.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func programName(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return filepath.Base(args[0])
}

// redactArgs hides the value after any *password* flag and shortens long
// payloads such as encoded scripts.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	hideNext := false
	for i, a := range args {
		switch {
		case hideNext:
			out[i] = "[REDACTED]"
			hideNext = false
		case strings.HasPrefix(a, "--") && strings.Contains(a, "password"):
			if k, _, found := strings.Cut(a, "="); found {
				out[i] = k + "=[REDACTED]"
			} else {
				out[i] = a
				hideNext = true
			}
		case len(a) > maxLoggedArg:
			out[i] = fmt.Sprintf("<%d bytes>", len(a))
		default:
			out[i] = a
		}
	}
	return out
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
