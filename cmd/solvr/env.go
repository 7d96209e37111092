package main

import (
	"os"

	"github.com/ChamsBouzaiene/solvr/internal/config"
)

// applyConfigToEnv projects stored preferences onto the environment the
// oracle factory and tools read. Stored values take precedence over what
// the shell or .env file already exported; empty fields leave the
// environment untouched.
func applyConfigToEnv(cfg *config.Config) {
	if cfg.LLMProvider != "" {
		os.Setenv("LLM_PROVIDER", cfg.LLMProvider)
	}

	if cfg.APIKey != "" {
		switch cfg.LLMProvider {
		case "openai":
			os.Setenv("OPENAI_API_KEY", cfg.APIKey)
		case "anthropic":
			os.Setenv("ANTHROPIC_API_KEY", cfg.APIKey)
		}
	}

	if cfg.Model != "" {
		switch cfg.LLMProvider {
		case "openai":
			os.Setenv("OPENAI_MODEL", cfg.Model)
		case "anthropic":
			os.Setenv("ANTHROPIC_MODEL", cfg.Model)
		}
	}

	// Only the OpenAI-compatible client honors a base URL override.
	if cfg.BaseURL != "" && cfg.LLMProvider == "openai" {
		os.Setenv("OPENAI_BASE_URL", cfg.BaseURL)
	}

	if cfg.StockfishPath != "" {
		os.Setenv("STOCKFISH_PATH", cfg.StockfishPath)
	}
}
