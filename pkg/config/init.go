package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configHeader = `# fms Configuration File
#
# Every key can be overridden with an environment variable built from the
# FMS_ prefix and the upper-cased key path, e.g.:
#   FMS_LOGGING_LEVEL=DEBUG
#   FMS_STORAGE_TYPE=s3
#   FMS_STORAGE_S3_BUCKET=items
#
# Sizes accept units ("100Mi", "1GB"); durations accept Go syntax ("30s", "5m").

`

// InitConfig writes a default configuration file to the default location and
// returns its path. An existing file is only replaced when force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a default configuration file to path.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s\n\nUse --force to overwrite", path)
		}
	}

	data, err := GenerateDefaultYAML()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateDefaultYAML renders the default configuration with its header.
func GenerateDefaultYAML() ([]byte, error) {
	body, err := yaml.Marshal(GetDefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal default config: %w", err)
	}
	return append([]byte(configHeader), body...), nil
}
