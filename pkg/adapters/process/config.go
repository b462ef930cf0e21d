package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// HookConfig describes an external program that decides whether an
// exercise is complete.
type HookConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of hooks.yaml
type ConfigFile struct {
	Hooks []HookConfig `yaml:"hooks" json:"hooks"`
}

// LoadHooks reads a configuration file (YAML or JSON) and returns the hooks by name.
func LoadHooks(path string) (map[string]HookConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	hooks := make(map[string]HookConfig, len(cfg.Hooks))
	for i, h := range cfg.Hooks {
		switch {
		case h.Name == "":
			return nil, fmt.Errorf("hooks[%d]: name is required", i)
		case h.Command == "":
			return nil, fmt.Errorf("hooks[%d] (%s): command is required", i, h.Name)
		}
		if _, dup := hooks[h.Name]; dup {
			return nil, fmt.Errorf("hooks[%d]: duplicate hook name %q", i, h.Name)
		}
		hooks[h.Name] = h
	}
	return hooks, nil
}
