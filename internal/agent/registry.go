package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// Func is a tool capability. It reports expected failures by prefixing the
// observation with "ERROR:" or "TOOL_ERROR:"; a returned error is reserved
// for truly exceptional conditions and is caught by the executor.
type Func func(ctx context.Context, st *State, params map[string]any) (string, error)

// Tool describes a registered capability. SchemaJSON declares the accepted
// parameters (JSON Schema object with "properties"); when OpenParams is set
// the capability takes any reconciled key, otherwise unknown keys are
// silently dropped at dispatch time. Aliases maps a canonical parameter name
// to alternate names the controller is known to use, in priority order.
type Tool struct {
	Name        string
	Description string
	SchemaJSON  string
	OpenParams  bool
	Aliases     map[string][]string
	Fn          Func
}

type registered struct {
	Tool
	params map[string]struct{} // declared parameter names, parsed once
}

// Registry maps tool names to capabilities. It is populated once at startup
// and read-only afterwards, so concurrent task runs need no locking.
type Registry struct {
	tools map[string]registered
}

// CatalogEntry is one line of the tool catalog shown to the reasoning oracle.
type CatalogEntry struct {
	Name        string
	Description string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registered)}
}

// Register adds a tool. Duplicate names and malformed parameter schemas are
// programming errors surfaced at startup, not at dispatch time.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if t.Fn == nil {
		return fmt.Errorf("tool %s has no function", t.Name)
	}
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %s already registered", t.Name)
	}

	params := make(map[string]struct{})
	if t.SchemaJSON != "" {
		if _, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(t.SchemaJSON)); err != nil {
			return fmt.Errorf("tool %s has invalid parameter schema: %w", t.Name, err)
		}
		var schema struct {
			Properties map[string]json.RawMessage `json:"properties"`
		}
		if err := json.Unmarshal([]byte(t.SchemaJSON), &schema); err != nil {
			return fmt.Errorf("tool %s has unparseable parameter schema: %w", t.Name, err)
		}
		for name := range schema.Properties {
			params[name] = struct{}{}
		}
	}

	r.tools[t.Name] = registered{Tool: t, params: params}
	return nil
}

// Lookup returns the tool for name, if registered.
func (r *Registry) Lookup(name string) (Tool, bool) {
	entry, ok := r.tools[name]
	return entry.Tool, ok
}

// Catalog returns a stable, name-sorted list of (name, description) pairs.
func (r *Registry) Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(r.tools))
	for _, t := range r.tools {
		entries = append(entries, CatalogEntry{Name: t.Name, Description: t.Description})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Allowed reports whether name is registered and permitted by the task's
// allowed-tools restriction (an empty restriction permits everything).
func (r *Registry) Allowed(st *State, name string) bool {
	if _, ok := r.tools[name]; !ok {
		return false
	}
	if len(st.AllowedTools) == 0 {
		return true
	}
	for _, allowed := range st.AllowedTools {
		if allowed == name {
			return true
		}
	}
	return false
}

// Reconcile maps the controller's raw parameters onto the capability's
// declared parameters: for each canonical name absent from raw, the first
// present alias is copied over; then, unless the tool takes open params,
// keys outside the declared schema are dropped.
func (r *Registry) Reconcile(name string, raw map[string]any) map[string]any {
	entry, ok := r.tools[name]
	if !ok {
		return raw
	}

	params := make(map[string]any, len(raw))
	for k, v := range raw {
		params[k] = v
	}
	for canonical, alts := range entry.Aliases {
		if _, present := params[canonical]; present {
			continue
		}
		for _, alt := range alts {
			if v, present := raw[alt]; present {
				params[canonical] = v
				break
			}
		}
	}

	if entry.OpenParams {
		return params
	}
	filtered := make(map[string]any, len(params))
	for k, v := range params {
		if _, declared := entry.params[k]; declared {
			filtered[k] = v
		}
	}
	return filtered
}
