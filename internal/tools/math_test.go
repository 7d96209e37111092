package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
)

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"12 * 8", "96"},
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"-5 + 2", "-3"},
		{"7 / 2", "3.5"},
		{"7 // 2", "3"},
		{"7 % 3", "1"},
		{"2 ^ 10", "1024"},
		{"2 ^ 3 ^ 2", "512"}, // right-associative
		{"--4", "4"},
		{"10 - 2 - 3", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, err := evalArithmetic(tt.expr)
			if err != nil {
				t.Fatalf("evalArithmetic(%q) error: %v", tt.expr, err)
			}
			if got := formatNumber(v); got != tt.want {
				t.Errorf("evalArithmetic(%q) = %s, want %s", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvalArithmeticErrors(t *testing.T) {
	for _, expr := range []string{"", "1 / 0", "5 % 0", "2 +", "(1 + 2", "abc", "1 2"} {
		t.Run(expr, func(t *testing.T) {
			if _, err := evalArithmetic(expr); err == nil {
				t.Errorf("evalArithmetic(%q) succeeded, want error", expr)
			}
		})
	}
}

func TestMathEvalTool(t *testing.T) {
	tool := NewMathEvalTool()
	st := &agent.State{Question: "What is 12 * 8?"}

	out, err := tool.Fn(context.Background(), st, map[string]any{"expr": "12 * 8 ="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "96" {
		t.Errorf("math_eval = %q, want 96", out)
	}

	out, _ = tool.Fn(context.Background(), st, map[string]any{"expr": "import os"})
	if !strings.HasPrefix(out, "ERROR: math_eval:") {
		t.Errorf("non-arithmetic input produced %q, want an ERROR observation", out)
	}
}
