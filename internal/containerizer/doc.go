// Package containerizer provides the container runtime abstraction used to
// run dashtrack's backing services.
//
// ContainerRuntime hides the runtime behind a small set of operations:
// pulling images, starting, inspecting, stopping and removing containers and
// resolving published ports. DockerRuntime implements it on top of the
// docker CLI; podman is supported through the same CLI dialect.
//
// # Usage Example
//
//	runtime, err := containerizer.NewContainerRuntime("docker")
//	if err != nil {
//	    return err
//	}
//
//	status, err := runtime.InspectContainer(ctx, "redis-dashtrack")
//	if err != nil {
//	    return err
//	}
//	if !status.Running {
//	    if err := runtime.PullImage(ctx, "redis:7.2.2-bookworm"); err != nil {
//	        return err
//	    }
//	    id, err := runtime.StartContainer(ctx, containerizer.ContainerConfig{
//	        Name:    "redis-dashtrack",
//	        Image:   "redis:7.2.2-bookworm",
//	        Ports:   []string{"6379:6379"},
//	        Command: []string{"redis-server", "--requirepass", password},
//	    })
//	    ...
//	}
//
// A container that does not exist is reported by InspectContainer as a zero
// ContainerStatus, not as an error, so callers can implement idempotent
// starts keyed on the container name.
//
// # Thread Safety
//
// DockerRuntime holds no mutable state and may be shared between goroutines.
package containerizer
