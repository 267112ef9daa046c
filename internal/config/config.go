package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerWriteTimeout caps how long the API may spend writing a response,
// which bounds a full provisioning run end to end.
const ServerWriteTimeout = 15 * time.Minute

// Execution modes for the command runner.
const (
	ExecModeLocal     = "local"
	ExecModeDockerCLI = "docker-cli"
	ExecModeDockerAPI = "docker-api"
	ExecModeSSH       = "ssh"
)

type Config struct {
	HTTPListenAddr    string
	MetricsListenAddr string
	LogLevel          string
	ServiceName       string
	Environment       string

	ProvisioningSecret string

	// ExecMode selects where commands run: directly on this host, relayed into
	// BackendContainer (docker CLI or Engine API), or over SSH.
	ExecMode         string
	BackendContainer string
	DockerHost       string
	SSHAddr          string
	SSHUser          string
	SSHKeyPath       string
	// SSHKnownHosts pins the backend host key; host keys are not verified when empty.
	SSHKnownHosts string

	BenchPath      string
	MasterSite     string
	ParentDomain   string
	DBRootPassword string
	DefaultApps    []string

	Timeouts Timeouts

	RateLimitRPS   float64
	RateLimitBurst int

	// DatabaseURL enables the audit log when set.
	DatabaseURL string
}

// Timeouts bounds every external call the workflow makes.
type Timeouts struct {
	SiteCreate   time.Duration
	AppInstall   time.Duration
	SiteDrop     time.Duration
	Script       time.Duration
	ScriptWrite  time.Duration
	ScriptDelete time.Duration
	Nginx        time.Duration
	NginxReload  time.Duration
	Health       time.Duration
}

func Load() (*Config, error) {
	var apps []string
	for _, a := range strings.Split(getEnv("DEFAULT_APPS", "nexus_core"), ",") {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			apps = append(apps, trimmed)
		}
	}

	timeouts, err := loadTimeouts()
	if err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(getEnv("PROVISION_RATE_LIMIT_RPS", "0.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("parse PROVISION_RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("PROVISION_RATE_LIMIT_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("parse PROVISION_RATE_LIMIT_BURST: %w", err)
	}

	cfg := &Config{
		HTTPListenAddr:     getEnv("HTTP_LISTEN_ADDR", ":8001"),
		MetricsListenAddr:  getEnv("METRICS_LISTEN_ADDR", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ServiceName:        getEnv("SERVICE_NAME", "provisioner"),
		Environment:        getEnv("ENVIRONMENT", "production"),
		ProvisioningSecret: getEnv("PROVISIONING_API_SECRET", ""),
		ExecMode:           getEnv("EXEC_MODE", ExecModeDockerCLI),
		BackendContainer:   getEnv("BACKEND_CONTAINER", "frappe_docker-backend-1"),
		DockerHost:         getEnv("DOCKER_HOST", ""),
		SSHAddr:            getEnv("SSH_ADDR", ""),
		SSHUser:            getEnv("SSH_USER", "frappe"),
		SSHKeyPath:         getEnv("SSH_KEY_PATH", ""),
		SSHKnownHosts:      getEnv("SSH_KNOWN_HOSTS", ""),
		BenchPath:          getEnv("BENCH_PATH", "/home/frappe/frappe-bench"),
		MasterSite:         getEnv("MASTER_SITE_NAME", "erp.localhost"),
		ParentDomain:       getEnv("PARENT_DOMAIN", "avariq.in"),
		DBRootPassword:     getEnv("DB_ROOT_PASSWORD", ""),
		DefaultApps:        apps,
		Timeouts:           timeouts,
		RateLimitRPS:       rps,
		RateLimitBurst:     burst,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
	}

	return cfg, nil
}

func loadTimeouts() (Timeouts, error) {
	var t Timeouts
	fields := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"SITE_CREATE_TIMEOUT", "5m", &t.SiteCreate},
		{"APP_INSTALL_TIMEOUT", "2m", &t.AppInstall},
		{"SITE_DROP_TIMEOUT", "1m", &t.SiteDrop},
		{"SCRIPT_TIMEOUT", "2m", &t.Script},
		{"SCRIPT_WRITE_TIMEOUT", "10s", &t.ScriptWrite},
		{"SCRIPT_DELETE_TIMEOUT", "5s", &t.ScriptDelete},
		{"NGINX_SETUP_TIMEOUT", "1m", &t.Nginx},
		{"NGINX_RELOAD_TIMEOUT", "15s", &t.NginxReload},
		{"HEALTH_TIMEOUT", "5s", &t.Health},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(getEnv(f.key, f.fallback))
		if err != nil {
			return Timeouts{}, fmt.Errorf("parse %s: %w", f.key, err)
		}
		*f.dst = d
	}
	return t, nil
}

func (c *Config) Validate() error {
	var missing []string
	if c.ProvisioningSecret == "" {
		missing = append(missing, "PROVISIONING_API_SECRET")
	}
	if c.DBRootPassword == "" {
		missing = append(missing, "DB_ROOT_PASSWORD")
	}
	if c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}

	switch c.ExecMode {
	case ExecModeLocal:
	case ExecModeDockerCLI, ExecModeDockerAPI:
		if c.BackendContainer == "" {
			missing = append(missing, "BACKEND_CONTAINER")
		}
	case ExecModeSSH:
		if c.SSHAddr == "" {
			missing = append(missing, "SSH_ADDR")
		}
		if c.SSHKeyPath == "" {
			missing = append(missing, "SSH_KEY_PATH")
		}
	default:
		return fmt.Errorf("unknown EXEC_MODE %q (want local, docker-cli, docker-api or ssh)", c.ExecMode)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction reports whether sites are served under the parent domain over https.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
