package agent

import (
	"context"
	"reflect"
	"testing"
)

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "echoes its input",
		SchemaJSON:  `{"type":"object","properties":{"expr":{"type":"string"},"depth":{"type":"integer"}}}`,
		Aliases:     map[string][]string{"expr": {"expression", "q"}},
		Fn: func(ctx context.Context, st *State, params map[string]any) (string, error) {
			v, _ := params["expr"].(string)
			return v, nil
		},
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(echoTool("echo")); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if err := reg.Register(echoTool("echo")); err == nil {
		t.Error("Register() accepted a duplicate name")
	}
	if err := reg.Register(Tool{Name: "", Fn: echoTool("x").Fn}); err == nil {
		t.Error("Register() accepted an empty name")
	}
	if err := reg.Register(Tool{Name: "nofn"}); err == nil {
		t.Error("Register() accepted a tool without a function")
	}
	if err := reg.Register(Tool{
		Name:       "badschema",
		SchemaJSON: `{"type": 42}`,
		Fn:         echoTool("x").Fn,
	}); err == nil {
		t.Error("Register() accepted an invalid schema")
	}
}

func TestCatalogSorted(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Register(echoTool(name)); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	var got []string
	for _, e := range reg.Catalog() {
		got = append(got, e.Name)
	}
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Catalog() order = %v, want %v", got, want)
	}
}

func TestAllowed(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(echoTool("echo")); err != nil {
		t.Fatal(err)
	}

	open := &State{}
	if !reg.Allowed(open, "echo") {
		t.Error("Allowed() rejected a registered tool with no restriction")
	}
	if reg.Allowed(open, "ghost") {
		t.Error("Allowed() accepted an unregistered tool")
	}

	restricted := &State{AllowedTools: []string{"other"}}
	if reg.Allowed(restricted, "echo") {
		t.Error("Allowed() accepted a tool outside the task allowlist")
	}
	restricted.AllowedTools = []string{"echo"}
	if !reg.Allowed(restricted, "echo") {
		t.Error("Allowed() rejected an allowlisted tool")
	}
}

func TestReconcile(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(echoTool("echo")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		raw  map[string]any
		want map[string]any
	}{
		{
			name: "alias mapped to canonical",
			raw:  map[string]any{"q": "2+2"},
			want: map[string]any{"expr": "2+2"},
		},
		{
			name: "canonical wins over alias",
			raw:  map[string]any{"expr": "keep", "q": "drop"},
			want: map[string]any{"expr": "keep"},
		},
		{
			name: "alias priority order",
			raw:  map[string]any{"q": "second", "expression": "first"},
			want: map[string]any{"expr": "first"},
		},
		{
			name: "undeclared keys dropped",
			raw:  map[string]any{"expr": "x", "noise": true},
			want: map[string]any{"expr": "x"},
		},
		{
			name: "declared non-alias key kept",
			raw:  map[string]any{"expr": "x", "depth": float64(3)},
			want: map[string]any{"expr": "x", "depth": float64(3)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reg.Reconcile("echo", tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Reconcile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReconcileOpenParams(t *testing.T) {
	reg := NewRegistry()
	err := reg.Register(Tool{
		Name:       "open",
		SchemaJSON: `{"type":"object","properties":{"known":{"type":"string"}}}`,
		OpenParams: true,
		Fn:         echoTool("x").Fn,
	})
	if err != nil {
		t.Fatal(err)
	}

	got := reg.Reconcile("open", map[string]any{"known": "a", "extra": "b"})
	want := map[string]any{"known": "a", "extra": "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reconcile() with open params = %v, want %v", got, want)
	}
}
