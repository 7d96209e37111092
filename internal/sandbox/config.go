package sandbox

import "time"

// Config holds sandbox resource limits and the interpreter image.
type Config struct {
	Image      string        // Docker image used for python execution
	Memory     int64         // memory limit in bytes
	CPU        float64       // CPU cores
	RunTimeout time.Duration // default per-run timeout
}

// DefaultConfig returns conservative limits for short task scripts.
func DefaultConfig() Config {
	return Config{
		Image:      "python:3.12-alpine",
		Memory:     256 * 1024 * 1024,
		CPU:        1.0,
		RunTimeout: 5 * time.Second,
	}
}
