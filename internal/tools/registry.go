// Package tools holds the tool definitions exposed to the model and the
// registry that dispatches tool calls to their executors.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmytrop/nbu-agent/internal/adapter/llm"
)

// Executor runs a tool call and returns the text handed back to the model.
type Executor func(ctx context.Context, args json.RawMessage) (string, error)

type entry struct {
	def  llm.Tool
	exec Executor
}

// Registry maps tool names to definitions and executors.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool. Registering the same name twice overwrites the
// previous entry.
func (r *Registry) Register(def llm.Tool, exec Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[def.Function.Name] = entry{def: def, exec: exec}
}

// Definitions returns the tool definitions for a chat completion request.
func (r *Registry) Definitions() []llm.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]llm.Tool, 0, len(r.entries))
	for _, e := range r.entries {
		defs = append(defs, e.def)
	}
	return defs
}

// Has reports whether a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Execute runs the named tool with raw JSON arguments.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (string, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return e.exec(ctx, args)
}
