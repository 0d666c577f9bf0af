// Package guard screens untrusted user text before it reaches the model.
// Detection reports every catalogue pattern the text matches, sanitization
// neutralizes prompt-structure tricks without rewriting the message, and the
// block/allow verdict is delegated to the policy engine.
package guard

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/dmytrop/nbu-agent/internal/domain"
	"github.com/dmytrop/nbu-agent/policy"
)

var (
	reDashes       = regexp.MustCompile(`---+`)
	reRoleColon    = regexp.MustCompile(`(?i)(human|assistant|user|system)\s*:`)
	reSpecialToken = regexp.MustCompile(`<\|.*?\|>`)
	reBracketRole  = regexp.MustCompile(`\[(?:system|user|assistant)\]`)
	reWhitespace   = regexp.MustCompile(`\s+`)
)

// Validator runs detection and sanitization on inbound messages.
type Validator struct {
	patterns []Pattern
	engine   *policy.Engine
	maxLen   int
	log      *zap.Logger
}

// NewValidator creates a validator over the shared catalogue.
func NewValidator(engine *policy.Engine, maxLen int, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{
		patterns: Catalogue,
		engine:   engine,
		maxLen:   maxLen,
		log:      log,
	}
}

// Detect scans text against the catalogue and reports every match, not just
// the first. It never fails, for any input.
func (v *Validator) Detect(text string) domain.DetectionResult {
	var result domain.DetectionResult
	for _, p := range v.patterns {
		if p.re.MatchString(text) {
			result.Patterns = append(result.Patterns, p.ID)
			result.Classes = append(result.Classes, p.Class)
		}
	}
	result.Suspicious = len(result.Patterns) > 0
	return result
}

// Sanitize neutralizes prompt-structure tricks in text. The transformation
// is deterministic and order-sensitive: delimiter runs are collapsed, role
// markers are defused by spacing out the colon, special tokens and bracketed
// role tags are stripped, whitespace is collapsed, and the result is capped
// at the configured length with an ellipsis marker when truncated.
func (v *Validator) Sanitize(text string) string {
	s := reDashes.ReplaceAllString(text, "---")
	s = reRoleColon.ReplaceAllString(s, "$1 :")
	s = reSpecialToken.ReplaceAllString(s, "")
	s = reBracketRole.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, " ")
	if runes := []rune(s); len(runes) > v.maxLen {
		s = string(runes[:v.maxLen]) + "..."
	}
	return strings.TrimSpace(s)
}

// Validate runs detection, asks the policy engine for the block/allow
// verdict, and always returns sanitized text. A suspicious message produces
// a warning but is not blocked by itself; the policy decides from the full
// match set.
func (v *Validator) Validate(ctx context.Context, text string) (domain.ValidationOutcome, error) {
	detection := v.Detect(text)

	var warnings []string
	if detection.Suspicious {
		warnings = append(warnings, "Potential prompt injection detected")
		v.log.Warn("injection patterns matched",
			zap.Strings("patterns", detection.Patterns),
			zap.String("preview", preview(text, 100)),
		)
	}

	decision, _, err := v.engine.Evaluate(ctx, policy.Input(detection))
	if err != nil {
		return domain.ValidationOutcome{}, fmt.Errorf("policy evaluation failed: %w", err)
	}

	return domain.ValidationOutcome{
		Safe:      decision != policy.DecisionBlock,
		Sanitized: v.Sanitize(text),
		Warnings:  warnings,
	}, nil
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
