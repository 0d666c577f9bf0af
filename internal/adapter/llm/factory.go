package llm

import "time"

// ModeMock selects the mock client instead of the real provider.
const ModeMock = "MOCK"

// NewLLMClient creates an LLM client for the given mode. Anything other
// than ModeMock returns a real client.
func NewLLMClient(mode, baseURL, apiKey string, timeout time.Duration) LLMClient {
	if mode == ModeMock {
		return NewMockClient()
	}
	return NewClient(baseURL, apiKey, timeout)
}
