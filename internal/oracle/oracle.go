// Package oracle abstracts the reasoning service that turns task context
// into plans and decisions. Providers are selected at startup; the agent
// loop only sees the Client interface.
package oracle

import "context"

// Client is one chat-style completion call: a system instruction and a user
// message in, raw text out. Implementations make a single blocking network
// call; retries and timeouts are the caller's concern.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// VisionClient extends Client with image-grounded completion. The image is
// read from a local path and inlined as a data URI.
type VisionClient interface {
	Client
	CompleteWithImage(ctx context.Context, system, user, imagePath string) (string, error)
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
