package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/config"
)

// NewLogger writes JSON lines to stdout.
func NewLogger(cfg *config.Config) zerolog.Logger {
	return New(os.Stdout, cfg)
}

// New builds the root logger. Every line carries the service identity and
// exec mode so lines from several provisioners in one sink stay attributable.
// Unknown levels fall back to info.
func New(w io.Writer, cfg *config.Config) zerolog.Logger {
	fields := zerolog.New(w).With().Timestamp()
	for key, val := range map[string]string{
		"service":     cfg.ServiceName,
		"environment": cfg.Environment,
		"exec_mode":   cfg.ExecMode,
	} {
		if val != "" {
			fields = fields.Str(key, val)
		}
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return fields.Logger().Level(level)
}
