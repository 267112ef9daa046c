package runner

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvin/provisioner/internal/config"
)

// New builds the Runner selected by cfg.ExecMode, wrapped with logging and
// metrics. Call Close on the result at shutdown.
func New(cfg *config.Config, logger zerolog.Logger) (*Logged, error) {
	var r Runner
	switch cfg.ExecMode {
	case config.ExecModeLocal:
		r = NewLocal()
	case config.ExecModeDockerCLI:
		r = NewDockerCLI(cfg.BackendContainer)
	case config.ExecModeDockerAPI:
		d, err := NewDockerRunner(cfg.DockerHost, cfg.BackendContainer)
		if err != nil {
			return nil, err
		}
		r = d
	case config.ExecModeSSH:
		s, err := NewSSHRunner(cfg.SSHAddr, cfg.SSHUser, cfg.SSHKeyPath, cfg.SSHKnownHosts)
		if err != nil {
			return nil, err
		}
		if cfg.SSHKnownHosts == "" {
			logger.Warn().Str("addr", cfg.SSHAddr).Msg("SSH_KNOWN_HOSTS not set, backend host key is not verified")
		}
		r = s
	default:
		return nil, fmt.Errorf("unknown exec mode %q", cfg.ExecMode)
	}
	return WithLogging(r, logger), nil
}
