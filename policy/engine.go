// Package policy decides whether a screened message is allowed through to
// the model. The decision lives in a rego document so the blocking heuristic
// can be tested and replaced without touching the matching code.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/dmytrop/nbu-agent/internal/domain"
)

// Decisions returned by the policy.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine from the given rego content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.input_guard.decision"),
		rego.Module("input_guard.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewEngineFromFile creates a policy engine from a rego file, falling back
// to DefaultPolicy when path is empty.
func NewEngineFromFile(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewEngine(ctx, string(content))
}

// Input shapes a detection result for policy evaluation.
func Input(d domain.DetectionResult) map[string]interface{} {
	patterns := d.Patterns
	if patterns == nil {
		patterns = []string{}
	}
	classes := make([]string, 0, len(d.Classes))
	for _, c := range d.Classes {
		classes = append(classes, string(c))
	}
	return map[string]interface{}{
		"match_count": len(d.Patterns),
		"patterns":    patterns,
		"classes":     classes,
	}
}

// Evaluate returns the decision for the given input.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy is expected to define a default.
		return DecisionAllow, "default", nil
	}

	val := results[0].Expressions[0].Value
	if s, ok := val.(string); ok {
		return s, "", nil
	}

	return DecisionAllow, "unexpected return type", nil
}

// DefaultPolicy blocks a message once two or more independent injection
// signals co-occur. A single isolated match stays allowed: legitimate
// questions trip lone patterns often enough that one hit is weak evidence.
const DefaultPolicy = `
package input_guard

default decision := "allow"

decision := "block" if {
	input.match_count >= 2
}
`
