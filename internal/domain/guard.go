package domain

// IntentClass groups injection patterns by what the text is trying to do.
type IntentClass string

const (
	IntentOverride   IntentClass = "override"    // rewrite or discard the standing instructions
	IntentBoundary   IntentClass = "boundary"    // fake an end-of-system-prompt boundary
	IntentToolBypass IntentClass = "tool_bypass" // coerce answering without the tool
	IntentRoleSpoof  IntentClass = "role_spoof"  // inject conversation role markers
)

// DetectionResult carries every catalogue pattern matched in one message.
type DetectionResult struct {
	Suspicious bool
	Patterns   []string      // matched pattern ids, in catalogue order
	Classes    []IntentClass // intent class per matched pattern
}

// ValidationOutcome is the guard's verdict for one inbound message.
// Sanitized is always usable regardless of Safe; the caller decides.
type ValidationOutcome struct {
	Safe      bool
	Sanitized string
	Warnings  []string
}
