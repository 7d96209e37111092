package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
	"github.com/ChamsBouzaiene/solvr/internal/config"
	"github.com/ChamsBouzaiene/solvr/internal/oracle"
	"github.com/ChamsBouzaiene/solvr/internal/sandbox"
	"github.com/ChamsBouzaiene/solvr/internal/tools"
	"github.com/ChamsBouzaiene/solvr/internal/trace"
)

const defaultMaxSteps = 6

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("solvr: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("solvr", flag.ExitOnError)
	question := fs.String("question", "", "Task question to solve")
	file := fs.String("file", "", "Optional attached file (image, audio, .py script)")
	maxSteps := fs.Int("max-steps", 0, "Tool-step budget per task (default 6)")
	allowed := fs.String("tools", "", "Comma-separated allowlist of tool names (default: all)")
	autoFinish := fs.Bool("auto-finish", false, "Finish directly after the first successful tool result")
	noEarlyStop := fs.Bool("no-early-stop", false, "Disable plausibility-based early finishing")
	showTrace := fs.Bool("trace", false, "Print the full reasoning trace after the answer")
	tracePath := fs.String("trace-log", "", "JSONL run log path (default from config, runs.jsonl)")
	dbPath := fs.String("db", "", "SQLite run history path (empty disables persistence)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*question) == "" {
		fs.Usage()
		return fmt.Errorf("a -question is required")
	}

	cfg := loadConfig()
	applyConfigToEnv(cfg)
	if *maxSteps <= 0 {
		*maxSteps = cfg.MaxSteps
	}
	if *maxSteps <= 0 {
		*maxSteps = defaultMaxSteps
	}
	if *tracePath == "" {
		*tracePath = cfg.TracePath
	}
	if *tracePath == "" {
		*tracePath = "runs.jsonl"
	}
	if *dbPath == "" {
		*dbPath = cfg.DBPath
	}

	client, model, err := oracle.NewFromEnv()
	if err != nil {
		// The loop tolerates a missing oracle: deterministic tools still
		// work and the run ends with a diagnostic answer.
		log.Printf("reasoning oracle unavailable: %v", err)
		client = nil
	} else {
		log.Printf("using model %s", model)
	}

	sandboxCfg := sandbox.DefaultConfig()
	if cfg.SandboxImage != "" {
		sandboxCfg.Image = cfg.SandboxImage
	}

	registry, err := tools.NewDefaultRegistry(client, sandbox.NewRunner(sandboxCfg))
	if err != nil {
		return err
	}

	var allowedTools []string
	for _, name := range strings.Split(*allowed, ",") {
		if name = strings.TrimSpace(name); name != "" {
			allowedTools = append(allowedTools, name)
		}
	}

	st := agent.NewState(uuid.NewString(), *question, *file, *maxSteps, allowedTools)
	st.AutoFinishAfterTool = *autoFinish
	st.EarlyStop = !*noEarlyStop

	result := agent.NewOrchestrator(registry, client).Run(ctx, st)

	fmt.Println(result.Answer)
	if *showTrace {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, trace.FormatTurns(result.Scratchpad))
	}

	persist(ctx, result, *tracePath, *dbPath)
	return nil
}

func loadConfig() *config.Config {
	manager, err := config.NewManager()
	if err != nil {
		return &config.Config{}
	}
	cfg, err := manager.Load()
	if err != nil {
		log.Printf("ignoring unreadable config: %v", err)
		return &config.Config{}
	}
	return cfg
}

// persist appends the run to the JSONL log and, when a database path is
// configured, the SQLite history. Persistence failures are logged, never
// fatal; the answer has already been printed.
func persist(ctx context.Context, result agent.Result, tracePath, dbPath string) {
	if tracePath != "" {
		if err := trace.AppendJSONL(tracePath, result); err != nil {
			log.Printf("failed to append run log: %v", err)
		}
	}
	if dbPath == "" {
		return
	}

	saveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := trace.NewStore(saveCtx, dbPath)
	if err != nil {
		log.Printf("failed to open run history: %v", err)
		return
	}
	defer store.Close()

	if err := store.SaveRun(saveCtx, result); err != nil {
		log.Printf("failed to save run history: %v", err)
	}
}
