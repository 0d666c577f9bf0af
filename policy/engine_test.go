package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmytrop/nbu-agent/internal/domain"
)

func TestDefaultPolicyThreshold(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngine(ctx, DefaultPolicy)
	require.NoError(t, err)

	tests := []struct {
		name       string
		matchCount int
		want       string
	}{
		{"no matches", 0, DecisionAllow},
		{"single match", 1, DecisionAllow},
		{"two matches", 2, DecisionBlock},
		{"many matches", 5, DecisionBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, _, err := engine.Evaluate(ctx, map[string]interface{}{
				"match_count": tt.matchCount,
				"patterns":    []string{},
				"classes":     []string{},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision)
		})
	}
}

func TestCustomPolicy(t *testing.T) {
	ctx := context.Background()

	// Stricter policy: any match blocks.
	engine, err := NewEngine(ctx, `
package input_guard

default decision := "allow"

decision := "block" if {
	input.match_count >= 1
}
`)
	require.NoError(t, err)

	decision, _, err := engine.Evaluate(ctx, map[string]interface{}{"match_count": 1})
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, decision)
}

func TestNewEngineInvalidRego(t *testing.T) {
	_, err := NewEngine(context.Background(), "this is not rego")
	assert.Error(t, err)
}

func TestNewEngineFromFileEmptyPathUsesDefault(t *testing.T) {
	ctx := context.Background()
	engine, err := NewEngineFromFile(ctx, "")
	require.NoError(t, err)

	decision, _, err := engine.Evaluate(ctx, map[string]interface{}{"match_count": 2})
	require.NoError(t, err)
	assert.Equal(t, DecisionBlock, decision)
}

func TestInputShaping(t *testing.T) {
	in := Input(domain.DetectionResult{
		Suspicious: true,
		Patterns:   []string{"ignore_instructions", "you_are_now"},
		Classes:    []domain.IntentClass{domain.IntentOverride, domain.IntentRoleSpoof},
	})

	assert.Equal(t, 2, in["match_count"])
	assert.Equal(t, []string{"ignore_instructions", "you_are_now"}, in["patterns"])
	assert.Equal(t, []string{string(domain.IntentOverride), string(domain.IntentRoleSpoof)}, in["classes"])
}

func TestInputShapingEmpty(t *testing.T) {
	in := Input(domain.DetectionResult{})
	assert.Equal(t, 0, in["match_count"])
	assert.Equal(t, []string{}, in["patterns"])
}
