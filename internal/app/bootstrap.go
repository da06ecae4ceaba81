package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dashtrack/internal/config"
	"dashtrack/pkg/logging"
)

// Application bootstraps dashtrack and runs its commands.
//
// Initialization happens in NewApplication: configuration loading, logging
// setup and service construction. Nothing is started until Run, Status or
// StopStore is called.
//
// Example usage:
//
//	cfg := app.NewConfig(false, false, "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	defer application.Close()
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
	output   io.Writer
	logFile  *os.File
}

// NewApplication loads the configuration, configures logging and builds the
// services. The application log is written to stdout and, when
// logging.file is set, appended to that file.
func NewApplication(cfg *Config) (*Application, error) {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Log to the command output only until the configuration is known
	bootLevel := logging.LevelInfo
	if cfg.Debug {
		bootLevel = logging.LevelDebug
	}
	logging.InitForCLI(bootLevel, consoleOutput(cfg, output))

	if cfg.DashtrackConfig == nil {
		configPath := cfg.ConfigPath
		if configPath == "" {
			configPath = config.GetDefaultConfigPathOrPanic()
		}

		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load dashtrack configuration from %s: %w", configPath, err)
		}
		cfg.DashtrackConfig = &loaded
	} else if cfg.DashtrackConfig.Store.PasswordSource() == "" {
		cfg.DashtrackConfig.Store.ResolvePassword()
	}

	if cfg.StrictStart {
		cfg.DashtrackConfig.StrictStart = true
	}
	if cfg.Workers > 0 {
		cfg.DashtrackConfig.Workers.Workers = cfg.Workers
	}

	logFile, err := initLogging(cfg, output)
	if err != nil {
		return nil, err
	}

	logging.Info("Bootstrap", "Store password resolved from %s", cfg.DashtrackConfig.Store.PasswordSource())

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		if logFile != nil {
			_ = logFile.Close()
		}
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
		output:   output,
		logFile:  logFile,
	}, nil
}

// initLogging configures the process-wide logger. The returned file, if any,
// must be closed by the caller.
func initLogging(cfg *Config, output io.Writer) (*os.File, error) {
	level := logging.ParseLevel(cfg.DashtrackConfig.Logging.Level)
	if cfg.Debug {
		level = logging.LevelDebug
	}

	logOutput := consoleOutput(cfg, output)

	path := cfg.DashtrackConfig.Logging.File
	if path == "" {
		logging.InitForCLI(level, logOutput)
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	logging.InitForCLI(level, io.MultiWriter(logOutput, file))
	return file, nil
}

// consoleOutput returns where log records go besides the log file.
func consoleOutput(cfg *Config, output io.Writer) io.Writer {
	if cfg.Silent && !cfg.Debug {
		return io.Discard
	}
	return output
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// Close releases the application log file.
func (a *Application) Close() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

// Run executes the run command: it starts the store, performs the order
// round trip and, if configured, imports orders through the worker pool.
//
// SIGINT and SIGTERM cancel the run. The store is stopped on every exit path.
func (a *Application) Run(ctx context.Context) error {
	return runStore(ctx, a.config, a.services, a.output)
}
