package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// LocalRunner spawns processes on this host. With a wrap function it relays
// each command through another program, such as `docker exec`.
type LocalRunner struct {
	wrap func(cmd Command) (argv []string, dir string)
}

// NewLocal runs commands directly, using Command.Dir as the process directory.
func NewLocal() *LocalRunner {
	return &LocalRunner{
		wrap: func(cmd Command) ([]string, string) { return cmd.Args, cmd.Dir },
	}
}

// NewDockerCLI relays commands into container through the docker binary.
func NewDockerCLI(container string) *LocalRunner {
	return &LocalRunner{
		wrap: func(cmd Command) ([]string, string) {
			argv := []string{"docker", "exec"}
			if cmd.Dir != "" {
				argv = append(argv, "-w", cmd.Dir)
			}
			argv = append(argv, container)
			return append(argv, cmd.Args...), ""
		},
	}
}

func (l *LocalRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if err := validate(cmd); err != nil {
		return nil, err
	}
	argv, dir := l.wrap(cmd)

	ctx, cancel := withTimeout(ctx, cmd)
	defer cancel()

	proc := exec.CommandContext(ctx, argv[0], argv[1:]...)
	proc.Dir = dir
	// Grandchildren holding the pipes open must not block Wait forever.
	proc.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	start := time.Now()
	err := proc.Run()
	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if cerr := classify(ctx, cmd); cerr != nil {
		return nil, cerr
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	return res, nil
}
