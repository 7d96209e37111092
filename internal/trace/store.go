// Package trace persists completed task runs: a SQLite store for querying
// past runs and a JSONL append log for cheap offline analysis.
package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
)

// Store provides database operations for run history.
type Store struct {
	db *sql.DB
}

// NewStore opens the run database and initializes the schema.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	// WAL mode allows readers alongside the single writer
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers well
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	-- One row per completed task run
	CREATE TABLE IF NOT EXISTS runs (
		run_id     TEXT PRIMARY KEY,
		question   TEXT NOT NULL,
		file_name  TEXT,
		answer     TEXT NOT NULL,
		last_tool  TEXT,
		steps      INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	-- One row per scratchpad turn within a run
	CREATE TABLE IF NOT EXISTS turns (
		turn_id     INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id      TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		thought     TEXT,
		action      TEXT NOT NULL,
		params      TEXT,
		observation TEXT,
		success     INTEGER NOT NULL,
		error       TEXT,
		duration_ms INTEGER NOT NULL,
		UNIQUE (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs (run_id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs (created_at);
	CREATE INDEX IF NOT EXISTS idx_turns_run ON turns (run_id);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun records a completed run and its turns in one transaction.
func (s *Store) SaveRun(ctx context.Context, result agent.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, question, file_name, answer, last_tool, steps, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.TaskID, result.Question, result.FileName, result.Answer,
		result.LastTool, result.Steps, result.Elapsed.Milliseconds(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, turn := range result.Scratchpad {
		params, err := json.Marshal(turn.Params)
		if err != nil {
			params = []byte("{}")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO turns (run_id, seq, thought, action, params, observation, success, error, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.TaskID, i+1, turn.Thought, turn.Action, string(params),
			turn.Observation, turn.Success, turn.Error, turn.DurationMS)
		if err != nil {
			return fmt.Errorf("failed to insert turn %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// RunSummary is one row of run history.
type RunSummary struct {
	TaskID    string
	Question  string
	Answer    string
	LastTool  string
	Steps     int
	ElapsedMS int64
	CreatedAt time.Time
}

// RecentRuns returns the newest runs first, up to limit.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, question, answer, last_tool, steps, elapsed_ms, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var r RunSummary
		var createdAt int64
		if err := rows.Scan(&r.TaskID, &r.Question, &r.Answer, &r.LastTool, &r.Steps, &r.ElapsedMS, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		summaries = append(summaries, r)
	}
	return summaries, rows.Err()
}
