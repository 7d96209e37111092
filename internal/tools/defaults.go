// Package tools provides the built-in task capabilities: deterministic
// evaluators, LLM-backed research and decoding, media transcription, chess
// vision and engine access, and sandboxed script execution. Each constructor
// returns an agent.Tool ready for registration.
package tools

import (
	"fmt"
	"net/http"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
	"github.com/ChamsBouzaiene/solvr/internal/oracle"
	"github.com/ChamsBouzaiene/solvr/internal/sandbox"
)

// NewDefaultRegistry wires the full capability set. A nil oracle client or
// sandbox runner degrades the affected tools to explicit ERROR observations
// rather than failing registration, so deterministic tools keep working
// offline.
func NewDefaultRegistry(client oracle.Client, runner sandbox.Runner) (*agent.Registry, error) {
	httpClient := &http.Client{Timeout: fetchTimeout}

	registry := agent.NewRegistry()
	for _, t := range []agent.Tool{
		NewMathEvalTool(),
		NewAnswerTool(client),
		NewReverseDecodeTool(client),
		NewWebSearchTool(client, httpClient),
		NewWikiLookupTool(client, httpClient),
		NewASRTool(client),
		NewYTTranscriptTool(client, httpClient),
		NewChessFromImageTool(client),
		NewChessEngineTool(),
		NewCodeRunTool(runner),
	} {
		if err := registry.Register(t); err != nil {
			return nil, fmt.Errorf("failed to build default registry: %w", err)
		}
	}
	return registry, nil
}
