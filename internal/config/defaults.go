package config

import "time"

const (
	DefaultRuntime       = "docker"
	DefaultContainerName = "redis-dashtrack"
	DefaultImage         = "redis:7.2.2-bookworm"
	DefaultHost          = "localhost"
	DefaultPort          = 6379
	DefaultDataDir       = "redis-dashtrack-data"
	DefaultUsername      = "default"
	DefaultPassword      = "test"
	DefaultPasswordEnv   = "REDIS_DT_PWD"
	DefaultHealthTimeout = 30 * time.Second
	DefaultDialTimeout   = 5 * time.Second

	DefaultMaxWorkers    = 10
	DefaultWorkerLogFile = "logs/dashtrack-threaded.log"
	DefaultLogFile       = "logs/dashtrack.log"
	DefaultDriverDir     = "drivers"
)

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() DashtrackConfig {
	return DashtrackConfig{
		Runtime: DefaultRuntime,
		Store: StoreConfig{
			ContainerName: DefaultContainerName,
			Image:         DefaultImage,
			Host:          DefaultHost,
			Port:          DefaultPort,
			DataDir:       DefaultDataDir,
			Username:      DefaultUsername,
			PasswordEnv:   DefaultPasswordEnv,
			HealthTimeout: DefaultHealthTimeout,
			DialTimeout:   DefaultDialTimeout,
		},
		Workers: WorkersConfig{
			MaxWorkers: DefaultMaxWorkers,
			LogFile:    DefaultWorkerLogFile,
		},
		Browser: BrowserConfig{
			DriverDir: DefaultDriverDir,
		},
		Logging: LoggingConfig{
			File:  DefaultLogFile,
			Level: "info",
		},
	}
}
