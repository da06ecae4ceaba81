package containerizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"dashtrack/pkg/logging"
)

const dockerSubsystem = "Docker"

// DockerRuntime implements ContainerRuntime using the Docker CLI (or any CLI
// that accepts the same arguments, such as podman).
type DockerRuntime struct {
	binary string
}

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// lookPath is a variable to allow mocking in tests
var lookPath = exec.LookPath

// NewDockerRuntime creates a new Docker runtime instance
func NewDockerRuntime() (*DockerRuntime, error) {
	return newCLIRuntime(string(RuntimeTypeDocker))
}

func newCLIRuntime(binary string) (*DockerRuntime, error) {
	// Check if the CLI is available
	if _, err := lookPath(binary); err != nil {
		return nil, fmt.Errorf("%s command not found in PATH: %w", binary, err)
	}

	// Check if the daemon is accessible
	ctx := context.Background()
	cmd := execCommandContext(ctx, binary, "info")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s daemon not accessible: %w", binary, err)
	}

	return &DockerRuntime{binary: binary}, nil
}

func (d *DockerRuntime) bin() string {
	if d.binary == "" {
		return string(RuntimeTypeDocker)
	}
	return d.binary
}

// PullImage pulls a container image if not already present
func (d *DockerRuntime) PullImage(ctx context.Context, image string) error {
	logging.Debug(dockerSubsystem, "Checking if image %s exists locally", image)

	// Check if image exists
	checkCmd := execCommandContext(ctx, d.bin(), "image", "inspect", image)
	if err := checkCmd.Run(); err == nil {
		logging.Debug(dockerSubsystem, "Image %s already exists", image)
		return nil
	}

	logging.Info(dockerSubsystem, "Pulling image %s", image)
	pullCmd := execCommandContext(ctx, d.bin(), "pull", image)
	output, err := pullCmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w\nOutput: %s", image, err, strings.TrimSpace(string(output)))
	}

	return nil
}

// StartContainer starts a container with the given configuration
func (d *DockerRuntime) StartContainer(ctx context.Context, config ContainerConfig) (string, error) {
	if err := config.Validate(); err != nil {
		return "", err
	}

	args := runArgs(config)

	logging.Debug(dockerSubsystem, "Starting container with command: %s %s", d.bin(), strings.Join(redactEnv(args), " "))

	cmd := execCommandContext(ctx, d.bin(), args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to start container %s: %w\nOutput: %s", config.Name, err, strings.TrimSpace(string(output)))
	}

	containerID := strings.TrimSpace(string(output))
	logging.Info(dockerSubsystem, "Started container %s with ID %s", config.Name, shortID(containerID))

	return containerID, nil
}

// runArgs builds the `run` argument list. Map-valued options are sorted so
// the command line is deterministic.
func runArgs(config ContainerConfig) []string {
	args := []string{"run", "-d", "--name", config.Name}

	for _, k := range sortedKeys(config.Labels) {
		args = append(args, "--label", fmt.Sprintf("%s=%s", k, config.Labels[k]))
	}

	for _, k := range sortedKeys(config.Env) {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, config.Env[k]))
	}

	for _, port := range config.Ports {
		args = append(args, "-p", port)
	}

	for _, vol := range config.Volumes {
		// Expand tilde in volume paths
		args = append(args, "-v", expandPath(vol))
	}

	if config.User != "" {
		args = append(args, "--user", config.User)
	}

	// Only the first entrypoint element is passed to --entrypoint, the rest
	// become arguments after the image
	if len(config.Entrypoint) > 0 {
		args = append(args, "--entrypoint", config.Entrypoint[0])
	}

	args = append(args, config.Image)

	if len(config.Entrypoint) > 1 {
		args = append(args, config.Entrypoint[1:]...)
	}
	args = append(args, config.Command...)

	return args
}

// StopContainer stops a running container
func (d *DockerRuntime) StopContainer(ctx context.Context, containerID string) error {
	logging.Info(dockerSubsystem, "Stopping container %s", shortID(containerID))

	cmd := execCommandContext(ctx, d.bin(), "stop", containerID)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to stop container %s: %w\nOutput: %s", shortID(containerID), err, strings.TrimSpace(string(output)))
	}

	return nil
}

// InspectContainer reports the state of a container by name or ID
func (d *DockerRuntime) InspectContainer(ctx context.Context, nameOrID string) (ContainerStatus, error) {
	cmd := execCommandContext(ctx, d.bin(), "inspect", "-f", "{{.Id}} {{.State.Running}}", nameOrID)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && isNoSuchContainer(string(exitErr.Stderr)) {
			return ContainerStatus{}, nil
		}
		return ContainerStatus{}, fmt.Errorf("failed to inspect container %s: %w", nameOrID, err)
	}

	fields := strings.Fields(strings.TrimSpace(string(output)))
	if len(fields) != 2 {
		return ContainerStatus{}, fmt.Errorf("unexpected inspect output for %s: %q", nameOrID, strings.TrimSpace(string(output)))
	}

	return ContainerStatus{
		ID:      fields[0],
		Exists:  true,
		Running: fields[1] == "true",
	}, nil
}

// GetContainerPort gets the mapped host port for a container port
func (d *DockerRuntime) GetContainerPort(ctx context.Context, containerID string, containerPort string) (string, error) {
	cmd := execCommandContext(ctx, d.bin(), "port", containerID, containerPort)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to get port mapping for %s:%s: %w", shortID(containerID), containerPort, err)
	}

	// Output format is usually "0.0.0.0:32768" or "[::]:32768", possibly one
	// line per address family; the first line is enough
	portOutput := strings.TrimSpace(string(output))
	if portOutput == "" {
		return "", fmt.Errorf("no port mapping found for %s:%s", shortID(containerID), containerPort)
	}
	firstLine := strings.SplitN(portOutput, "\n", 2)[0]

	parts := strings.Split(firstLine, ":")
	if len(parts) < 2 {
		return "", fmt.Errorf("unexpected port output format: %s", firstLine)
	}

	return parts[len(parts)-1], nil
}

// RemoveContainer removes a container
func (d *DockerRuntime) RemoveContainer(ctx context.Context, containerID string) error {
	logging.Debug(dockerSubsystem, "Removing container %s", shortID(containerID))

	cmd := execCommandContext(ctx, d.bin(), "rm", "-f", containerID)
	if output, err := cmd.CombinedOutput(); err != nil {
		if isNoSuchContainer(string(output)) {
			return nil
		}
		return fmt.Errorf("failed to remove container %s: %w", shortID(containerID), err)
	}

	return nil
}

func isNoSuchContainer(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "no such object") || strings.Contains(s, "no such container")
}

func shortID(containerID string) string {
	if len(containerID) > 12 {
		return containerID[:12]
	}
	return containerID
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// redactEnv hides environment values and password flags in debug output.
func redactEnv(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out); i++ {
		switch {
		case out[i] == "-e" && i+1 < len(out):
			if k, _, ok := strings.Cut(out[i+1], "="); ok {
				out[i+1] = k + "=REDACTED"
			}
			i++
		case out[i] == "--requirepass" && i+1 < len(out):
			out[i+1] = "REDACTED"
			i++
		}
	}
	return out
}

// expandPath expands tilde in paths to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
