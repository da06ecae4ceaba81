package app

import (
	"io"

	"dashtrack/internal/config"
	"dashtrack/internal/containerizer"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// Silent discards log output on stdout. The log file still receives it.
	Silent bool

	// StrictStart overrides the configured strictStart when true
	StrictStart bool

	// Workers overrides the configured worker count when positive
	Workers int

	// ImportFile is a YAML file of orders saved through the worker pool
	ImportFile string

	// Custom configuration path (optional)
	// When empty, ~/.config/dashtrack is used
	ConfigPath string

	// Output receives the command's user-facing output. Defaults to stdout.
	Output io.Writer

	// Dashtrack configuration. When set before NewApplication it is used as
	// is and no file is loaded.
	DashtrackConfig *config.DashtrackConfig

	// Runtime replaces the container runtime selected by the configuration
	Runtime containerizer.ContainerRuntime
}

// NewConfig creates a new application configuration
func NewConfig(debug, strict bool, configPath string) *Config {
	return &Config{
		Debug:       debug,
		StrictStart: strict,
		ConfigPath:  configPath,
	}
}
