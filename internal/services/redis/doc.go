// Package redis implements the store service: a Redis server running in a
// container managed through containerizer.ContainerRuntime.
//
// Start is idempotent per container name. A container that is already
// running under the configured name is adopted and reported as
// services.StartResultAlreadyRunning; a stopped leftover is removed and
// replaced. Health is a PING with the configured credentials, and Connect
// returns a fresh go-redis client for every caller.
package redis
