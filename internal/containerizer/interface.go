package containerizer

import (
	"context"
)

// ContainerRuntime defines the interface for container runtime operations
type ContainerRuntime interface {
	// PullImage pulls a container image if not already present
	PullImage(ctx context.Context, image string) error

	// StartContainer starts a container with the given configuration and
	// returns its ID
	StartContainer(ctx context.Context, config ContainerConfig) (string, error)

	// StopContainer stops a running container
	StopContainer(ctx context.Context, containerID string) error

	// InspectContainer reports whether a container with the given name or ID
	// exists and whether it is running. A missing container is not an error.
	InspectContainer(ctx context.Context, nameOrID string) (ContainerStatus, error)

	// GetContainerPort gets the mapped host port for a container port
	GetContainerPort(ctx context.Context, containerID string, containerPort string) (string, error)

	// RemoveContainer removes a container
	RemoveContainer(ctx context.Context, containerID string) error
}

// ContainerConfig holds configuration for starting a container
type ContainerConfig struct {
	Name       string            // Container name
	Image      string            // Container image
	Env        map[string]string // Environment variables
	Labels     map[string]string // Container labels
	Ports      []string          // Port mappings (host:container)
	Volumes    []string          // Volume mounts (host:container)
	Entrypoint []string          // Entrypoint override
	Command    []string          // Arguments passed after the image
	User       string            // User to run as
}

// Validate checks the fields required to start a container.
func (c ContainerConfig) Validate() error {
	if c.Name == "" {
		return errMissingField("name")
	}
	if c.Image == "" {
		return errMissingField("image")
	}
	return nil
}

// ContainerStatus describes a container as seen by the runtime.
type ContainerStatus struct {
	ID      string
	Exists  bool
	Running bool
}
