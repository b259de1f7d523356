package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"repopack/internal/logging"

	"gopkg.in/yaml.v3"
)

// Load builds the merged configuration for a run rooted at cwd.
//
// Layers, lowest precedence first: built-in defaults, the global config file,
// the local config file (or explicitPath when non-empty). CLI overrides are
// applied by the caller on the returned value. A missing explicitPath is an
// error; missing implicit files are skipped.
func Load(cwd, explicitPath string) (*Config, error) {
	cfg := DefaultConfig()

	if dir, err := GlobalDir(); err == nil {
		if path, ok := findConfigFile(dir); ok {
			logging.BootDebug("Loading global config: %s", path)
			if err := decodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	if explicitPath != "" {
		path := explicitPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s: %w", path, err)
		}
		logging.BootDebug("Loading config: %s", path)
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	} else if path, ok := findConfigFile(cwd); ok {
		logging.BootDebug("Loading local config: %s", path)
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Cwd = cwd
	cfg.applyEnvOverrides()

	return cfg, nil
}

// GlobalDir returns the directory holding the global config file.
func GlobalDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "repopack"), nil
}

// Save writes the configuration as YAML or JSON depending on the extension.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(fileView(c), "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// fileView strips run-scoped fields that do not belong in a config file.
func fileView(c *Config) any {
	out := c.Clone()
	out.Cwd = ""
	out.Verbose = false
	return &struct {
		Output   OutputConfig   `json:"output"`
		Include  []string       `json:"include"`
		Ignore   IgnoreConfig   `json:"ignore"`
		Security SecurityConfig `json:"security"`
		AI       AIConfig       `json:"ai"`
	}{out.Output, out.Include, out.Ignore, out.Security, out.AI}
}

func findConfigFile(dir string) (string, bool) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// decodeFile overlays the keys present in path onto cfg.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
