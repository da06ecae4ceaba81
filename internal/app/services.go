package app

import (
	"fmt"

	"dashtrack/internal/browser"
	"dashtrack/internal/config"
	"dashtrack/internal/containerizer"
	"dashtrack/internal/services"
	redisservice "dashtrack/internal/services/redis"
	"dashtrack/pkg/logging"
)

// browserCacheDir holds per-platform browser profiles
const browserCacheDir = ".cache"

// Services holds the components built from the configuration. None of them
// is started by InitializeServices.
type Services struct {
	// Runtime drives the container CLI
	Runtime containerizer.ContainerRuntime

	// Store is the Redis service owned by the orchestrator during a run
	Store *redisservice.Service

	// Browser resolves chromedriver for workers. Nil when the browser is
	// disabled.
	Browser *browser.Resolver
}

// InitializeServices creates the container runtime, the store service and,
// when enabled, the browser resolver.
func InitializeServices(cfg *Config) (*Services, error) {
	dc := cfg.DashtrackConfig

	runtime := cfg.Runtime
	if runtime == nil {
		var err error
		runtime, err = containerizer.NewContainerRuntime(dc.Runtime)
		if err != nil {
			return nil, fmt.Errorf("failed to create container runtime: %w", err)
		}
	}

	store, err := NewStoreService(dc.Store, runtime)
	if err != nil {
		return nil, err
	}

	svcs := &Services{
		Runtime: runtime,
		Store:   store,
	}

	if dc.Browser.Enabled {
		svcs.Browser = browser.NewResolver(browser.Options{
			DriverDir:  dc.Browser.DriverDir,
			CacheDir:   browserCacheDir,
			Headless:   dc.Browser.IsHeadless(),
			Incognito:  dc.Browser.Incognito,
			ServerMode: dc.Browser.ServerMode,
		})
		logging.Debug("Bootstrap", "Browser automation enabled (driver dir %s)", dc.Browser.DriverDir)
	}

	return svcs, nil
}

// NewStoreService builds the Redis service described by the store section.
func NewStoreService(store config.StoreConfig, runtime containerizer.ContainerRuntime) (*redisservice.Service, error) {
	svc, err := redisservice.NewService(redisservice.Config{
		ContainerName: store.ContainerName,
		Image:         store.Image,
		Host:          store.Host,
		Port:          store.Port,
		DataDir:       store.DataDir,
		Username:      store.Username,
		Password:      store.Password,
		DialTimeout:   store.DialTimeout,
	}, runtime)
	if err != nil {
		return nil, fmt.Errorf("failed to create store service: %w", err)
	}
	return svc, nil
}

// storeCredentials returns the credentials clients use for the store.
func storeCredentials(store config.StoreConfig) services.Credentials {
	return services.Credentials{Username: store.Username, Password: store.Password}
}
