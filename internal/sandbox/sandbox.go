// Package sandbox runs untrusted attached scripts in isolation. The
// preferred runner is a locked-down Docker container; when the daemon is
// unreachable a host-process fallback with a hard timeout is used instead.
package sandbox

import (
	"context"
	"time"
)

// Result captures the outcome of one script execution.
type Result struct {
	Stdout   string
	Stderr   string
	Code     int
	TimedOut bool
}

// Runner executes a python script and returns its output.
type Runner interface {
	RunPython(ctx context.Context, scriptPath string, timeout time.Duration) (Result, error)
}

// NewRunner returns a Docker-backed runner when the daemon is reachable,
// falling back to direct host execution otherwise.
func NewRunner(cfg Config) Runner {
	if docker, err := NewDockerRunner(cfg); err == nil {
		return docker
	}
	return NewHostRunner(cfg)
}
