package runner

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// DockerRunner execs commands in a container through the Docker Engine API.
type DockerRunner struct {
	cli       client.APIClient
	container string
}

// NewDockerRunner connects to host (the SDK environment defaults when empty).
func NewDockerRunner(host, containerName string) (*DockerRunner, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &DockerRunner{cli: cli, container: containerName}, nil
}

func (d *DockerRunner) Close() error {
	return d.cli.Close()
}

func (d *DockerRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, cmd)
	defer cancel()

	start := time.Now()
	execID, err := d.cli.ContainerExecCreate(ctx, d.container, container.ExecOptions{
		Cmd:          cmd.Args,
		WorkingDir:   cmd.Dir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		if cerr := classify(ctx, cmd); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("exec create in %s: %w", d.container, err)
	}

	resp, err := d.cli.ContainerExecAttach(ctx, execID.ID, container.ExecAttachOptions{})
	if err != nil {
		if cerr := classify(ctx, cmd); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("exec attach in %s: %w", d.container, err)
	}
	defer resp.Close()

	// The hijacked stream ignores ctx, so the copy runs aside and the
	// connection is closed if the deadline fires first.
	var stdout, stderr bytes.Buffer
	copied := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdout, &stderr, resp.Reader)
		copied <- err
	}()

	select {
	case <-ctx.Done():
		resp.Close()
		<-copied
		return nil, classify(ctx, cmd)
	case err := <-copied:
		if err != nil {
			return nil, fmt.Errorf("exec read output in %s: %w", d.container, err)
		}
	}

	inspect, err := d.cli.ContainerExecInspect(ctx, execID.ID)
	if err != nil {
		return nil, fmt.Errorf("exec inspect in %s: %w", d.container, err)
	}

	return &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: inspect.ExitCode,
		Duration: time.Since(start),
	}, nil
}
