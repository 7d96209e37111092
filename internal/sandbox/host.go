package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// HostRunner executes scripts directly on the host with a hard timeout.
// It offers no filesystem isolation and exists only as a fallback when the
// Docker daemon is unavailable.
type HostRunner struct {
	config Config
}

func NewHostRunner(config Config) *HostRunner {
	return &HostRunner{config: config}
}

func (r *HostRunner) RunPython(ctx context.Context, scriptPath string, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = r.config.RunTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "python3", "-I", "-B", scriptPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		TimedOut: errors.Is(execCtx.Err(), context.DeadlineExceeded),
	}
	if result.TimedOut {
		result.Code = 1
		return result, execCtx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.Code = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, err
	}
	return result, nil
}
