package config

import "time"

// DashtrackConfig is the top-level configuration structure for dashtrack.
type DashtrackConfig struct {
	// Runtime selects the container runtime CLI (docker or podman)
	Runtime string `yaml:"runtime,omitempty"`

	// StrictStart fails startup when the store container is already running
	// instead of reusing it
	StrictStart bool `yaml:"strictStart,omitempty"`

	Store   StoreConfig   `yaml:"store"`
	Workers WorkersConfig `yaml:"workers"`
	Browser BrowserConfig `yaml:"browser"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig describes the Redis container and the credentials used to
// reach it.
type StoreConfig struct {
	ContainerName string `yaml:"containerName,omitempty"`
	Image         string `yaml:"image,omitempty"`
	Host          string `yaml:"host,omitempty"`
	Port          int    `yaml:"port,omitempty"`
	DataDir       string `yaml:"dataDir,omitempty"` // Mounted at /data in the container
	Username      string `yaml:"username,omitempty"`

	// Password takes precedence over PasswordEnv. After loading it holds
	// the resolved password.
	Password    string `yaml:"password,omitempty"`
	PasswordEnv string `yaml:"passwordEnv,omitempty"` // Environment variable consulted when Password is empty

	HealthTimeout time.Duration `yaml:"healthTimeout,omitempty"`
	DialTimeout   time.Duration `yaml:"dialTimeout,omitempty"`

	passwordSource string
}

// PasswordSource describes where the resolved password came from: "config",
// "env:<NAME>" or "default".
func (s StoreConfig) PasswordSource() string {
	return s.passwordSource
}

// WorkersConfig sizes the worker pool.
type WorkersConfig struct {
	MaxWorkers int    `yaml:"maxWorkers,omitempty"`
	Workers    int    `yaml:"workers,omitempty"` // Defaults to MaxWorkers
	LogFile    string `yaml:"logFile,omitempty"`
}

// BrowserConfig controls chromedriver resolution for workers.
type BrowserConfig struct {
	Enabled    bool   `yaml:"enabled,omitempty"`
	DriverDir  string `yaml:"driverDir,omitempty"`
	Headless   *bool  `yaml:"headless,omitempty"` // Defaults to true
	Incognito  bool   `yaml:"incognito,omitempty"`
	ServerMode bool   `yaml:"serverMode,omitempty"`
}

// IsHeadless reports whether the browser runs without a window.
func (b BrowserConfig) IsHeadless() bool {
	return b.Headless == nil || *b.Headless
}

// LoggingConfig configures the application log.
type LoggingConfig struct {
	// File receives a copy of the application log in addition to stdout
	File  string `yaml:"file,omitempty"`
	Level string `yaml:"level,omitempty"`
}
