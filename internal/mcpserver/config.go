package mcpserver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the MCP server configuration loaded from mcp.yaml.
type Config struct {
	APIURL string `yaml:"api_url"`
	// Secret is sent when the MCP session does not carry its own
	// X-Provisioning-Secret header.
	Secret       string                  `yaml:"secret"`
	Instructions string                  `yaml:"instructions"`
	Overrides    map[string]ToolOverride `yaml:"overrides"`
}

// ToolOverride allows per-tool customization.
type ToolOverride struct {
	Description string `yaml:"description"`
	Disabled    bool   `yaml:"disabled"`
}

// LoadConfig reads mcp.yaml. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ParseConfig(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses mcp.yaml configuration from raw bytes.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mcp config: %w", err)
	}

	if cfg.APIURL == "" {
		cfg.APIURL = "http://127.0.0.1:8001"
	}
	if cfg.Instructions == "" {
		cfg.Instructions = "ERP tenant provisioning: check subdomains, provision and deprovision tenant sites, inspect service health and the tenant directory."
	}

	return &cfg, nil
}

func (c *Config) override(tool string) ToolOverride {
	return c.Overrides[tool]
}
