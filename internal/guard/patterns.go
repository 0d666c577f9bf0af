package guard

import (
	"regexp"

	"github.com/dmytrop/nbu-agent/internal/domain"
)

// Pattern is one entry in the injection catalogue: a tagged regular
// expression with the intent class it signals.
type Pattern struct {
	ID    string
	Class domain.IntentClass
	re    *regexp.Regexp
}

// Catalogue is the ordered injection-pattern catalogue. Order is the
// reporting order of matches. A pattern that fails to compile panics at
// startup via MustCompile, which is the intended fatal configuration error.
//
// The raw token and bracket patterns are deliberately case-sensitive; the
// rest match case-insensitively.
var Catalogue = []Pattern{
	// Instruction override attempts
	{"ignore_instructions", domain.IntentOverride, regexp.MustCompile(`(?i)ignore\s+(?:all\s+)?(?:previous\s+)?instructions`)},
	{"forget_instructions", domain.IntentOverride, regexp.MustCompile(`(?i)forget\s+(?:all\s+)?(?:previous\s+)?instructions`)},
	{"you_are_now", domain.IntentOverride, regexp.MustCompile(`(?i)you\s+are\s+now\s+(?:a\s+)?(?:different\s+)?(?:ai|assistant|bot)`)},
	{"new_instructions", domain.IntentOverride, regexp.MustCompile(`(?i)new\s+instructions?`)},
	{"override_instructions", domain.IntentOverride, regexp.MustCompile(`(?i)override\s+(?:previous\s+)?(?:system\s+)?(?:instructions?|prompts?)`)},

	// System prompt boundary spoofing
	{"end_of_prompt", domain.IntentBoundary, regexp.MustCompile(`(?i)end\s+(?:of\s+)?(?:system\s+)?(?:instructions?|prompts?)`)},
	{"prompt_ends", domain.IntentBoundary, regexp.MustCompile(`(?i)system\s+(?:prompt|message)\s+(?:ends?|over)`)},
	{"dash_end", domain.IntentBoundary, regexp.MustCompile(`(?i)---+\s*end`)},
	{"stop_being", domain.IntentBoundary, regexp.MustCompile(`(?i)stop\s+being\s+(?:an?\s+)?(?:ai|assistant|bot)`)},

	// Tool bypass coercion
	{"dont_use_tools", domain.IntentToolBypass, regexp.MustCompile(`(?i)don'?t\s+use\s+(?:any\s+)?tools?`)},
	{"never_use_tool", domain.IntentToolBypass, regexp.MustCompile(`(?i)never\s+use\s+(?:the\s+)?(?:currency|tool|function)`)},
	{"without_tools", domain.IntentToolBypass, regexp.MustCompile(`(?i)without\s+using\s+(?:any\s+)?tools?`)},
	{"make_up_data", domain.IntentToolBypass, regexp.MustCompile(`(?i)make\s+up\s+(?:random\s+)?(?:numbers?|data|rates?)`)},
	{"just_say", domain.IntentToolBypass, regexp.MustCompile(`(?i)just\s+(?:say|tell|respond)`)},
	{"instead_of_tools", domain.IntentToolBypass, regexp.MustCompile(`(?i)instead\s+of\s+using\s+tools?`)},

	// Conversation role spoofing
	{"role_marker", domain.IntentRoleSpoof, regexp.MustCompile(`(?i)human\s*:|assistant\s*:|user\s*:|system\s*:`)},
	{"special_token", domain.IntentRoleSpoof, regexp.MustCompile(`<\|.*?\|>`)},
	{"bracket_role", domain.IntentRoleSpoof, regexp.MustCompile(`\[(?:system|user|assistant)\]`)},

	// Scripted-answer coercion
	{"respond_with", domain.IntentOverride, regexp.MustCompile(`(?i)respond\s+with\s+['"].*['"]`)},
	{"say_exactly", domain.IntentOverride, regexp.MustCompile(`(?i)say\s+exactly\s+['"].*['"]`)},
	{"pretend", domain.IntentOverride, regexp.MustCompile(`(?i)pretend\s+(?:to\s+be|you\s+are)`)},
}
