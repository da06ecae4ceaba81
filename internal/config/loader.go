package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dashtrack/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/dashtrack"
	configFileName = "config.yaml"
)

// lookupEnv is a variable to allow mocking in tests
var lookupEnv = os.LookupEnv

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from the given directory on top of the
// defaults, resolves the store password and validates the result. A missing
// file yields the defaults.
func LoadConfig(configPath string) (DashtrackConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig() // Start with default config

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return DashtrackConfig{}, NewConfigurationError(configFilePath, "io", "failed to read configuration", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			// config malformed
			return DashtrackConfig{}, NewConfigurationError(configFilePath, "parse", "malformed YAML", err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	config.Store.ResolvePassword()

	if err := config.Validate(); err != nil {
		return DashtrackConfig{}, NewConfigurationError(configFilePath, "validation", "invalid configuration", err)
	}
	return config, nil
}

// ResolvePassword settles the store password once: an explicit Password
// wins, then the environment variable named by PasswordEnv, then
// DefaultPassword.
func (s *StoreConfig) ResolvePassword() {
	if s.Password != "" {
		s.passwordSource = "config"
		return
	}

	envName := s.PasswordEnv
	if envName == "" {
		envName = DefaultPasswordEnv
	}
	if value, ok := lookupEnv(envName); ok && value != "" {
		s.Password = value
		s.passwordSource = "env:" + envName
		return
	}

	s.Password = DefaultPassword
	s.passwordSource = "default"
}
