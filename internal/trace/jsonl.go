package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
)

type jsonlRecord struct {
	TaskID      string       `json:"task_id"`
	Question    string       `json:"question"`
	FileName    string       `json:"file_name,omitempty"`
	Turns       []agent.Turn `json:"turns"`
	FinalAnswer string       `json:"final_answer"`
	LastTool    string       `json:"last_tool,omitempty"`
	TS          float64      `json:"ts"`
}

// AppendJSONL appends one run record to a JSON-lines log file.
func AppendJSONL(path string, result agent.Result) error {
	record := jsonlRecord{
		TaskID:      result.TaskID,
		Question:    result.Question,
		FileName:    result.FileName,
		Turns:       result.Scratchpad,
		FinalAnswer: result.Answer,
		LastTool:    result.LastTool,
		TS:          float64(time.Now().UnixMilli()) / 1000.0,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trace log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append trace record: %w", err)
	}
	return nil
}
