package ctl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/edvin/provisioner/internal/client"
)

// BatchConfig is a tenants.yaml file.
type BatchConfig struct {
	APIURL  string                  `yaml:"api_url"`
	Secret  string                  `yaml:"secret"`
	Tenants []client.ProvisionInput `yaml:"tenants"`
}

func LoadBatch(path string) (*BatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseBatch(data)
}

func ParseBatch(data []byte) (*BatchConfig, error) {
	var cfg BatchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(cfg.Tenants) == 0 {
		return nil, fmt.Errorf("no tenants defined")
	}
	for i, t := range cfg.Tenants {
		if t.OrganizationName == "" || t.AdminEmail == "" {
			return nil, fmt.Errorf("tenant %d: organization_name and admin_email are required", i+1)
		}
	}
	return &cfg, nil
}
