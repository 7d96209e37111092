package trace

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
)

func sampleResult() agent.Result {
	return agent.Result{
		TaskID:   "task-1",
		Question: "How many planets are there?",
		Answer:   "8",
		LastTool: "openai_answer",
		Steps:    1,
		Elapsed:  1500 * time.Millisecond,
		Scratchpad: []agent.Turn{
			{
				Thought:     "ask the model",
				Action:      "openai_answer",
				Params:      map[string]any{"instruction": "count"},
				Observation: "8",
				Success:     true,
				DurationMS:  900,
			},
		},
	}
}

func TestStoreSaveAndQuery(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	store, err := NewStore(ctx, dbPath)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	defer store.Close()

	if err := store.SaveRun(ctx, sampleResult()); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns() error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	run := runs[0]
	if run.TaskID != "task-1" || run.Answer != "8" || run.Steps != 1 {
		t.Errorf("unexpected run summary: %+v", run)
	}
	if run.ElapsedMS != 1500 {
		t.Errorf("ElapsedMS = %d, want 1500", run.ElapsedMS)
	}
}

func TestStoreRejectsDuplicateRun(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.SaveRun(ctx, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveRun(ctx, sampleResult()); err == nil {
		t.Error("SaveRun() accepted a duplicate run id")
	}
}

func TestAppendJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.jsonl")

	if err := AppendJSONL(path, sampleResult()); err != nil {
		t.Fatalf("AppendJSONL() error: %v", err)
	}
	if err := AppendJSONL(path, sampleResult()); err != nil {
		t.Fatalf("AppendJSONL() second append error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		var record map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if record["task_id"] != "task-1" || record["final_answer"] != "8" {
			t.Errorf("unexpected record: %v", record)
		}
	}
	if lines != 2 {
		t.Errorf("got %d lines, want 2", lines)
	}
}

func TestFormatTurns(t *testing.T) {
	out := FormatTurns(sampleResult().Scratchpad)

	for _, fragment := range []string{"1. [openai_answer]", "ask the model", "duration=900ms", "success=true", "-> 8"} {
		if !strings.Contains(out, fragment) {
			t.Errorf("FormatTurns() output missing %q:\n%s", fragment, out)
		}
	}

	if FormatTurns(nil) != "" {
		t.Error("FormatTurns(nil) should be empty")
	}
}
