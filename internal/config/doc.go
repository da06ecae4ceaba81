// Package config loads dashtrack's configuration.
//
// Configuration lives in config.yaml inside the configuration directory
// (default ~/.config/dashtrack, overridable with --config-path). Values
// present in the file override GetDefaultConfig; a missing file means
// defaults only.
//
// # Store credentials
//
// The store password is resolved once at load time. An explicit
// store.password wins, then the environment variable named by
// store.passwordEnv (REDIS_DT_PWD unless set), then DefaultPassword.
//
// # Example
//
//	runtime: docker
//	strictStart: false
//	store:
//	  containerName: redis-dashtrack
//	  image: redis:7.2.2-bookworm
//	  port: 6379
//	  healthTimeout: 30s
//	workers:
//	  maxWorkers: 10
//	  logFile: logs/dashtrack-threaded.log
//	browser:
//	  enabled: true
//	  driverDir: drivers
//
// Load and validation failures are returned as *ConfigurationError.
package config
