package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient is a mock implementation of LLMClient for testing and for
// running without provider credentials. Responses can be scripted per call;
// with an empty script it echoes a canned reply.
type MockClient struct {
	mu     sync.Mutex
	script []*ChatCompletionResponse

	// Requests records every request received, in order.
	Requests []*ChatCompletionRequest
}

// NewMockClient creates a new mock LLM client with an optional response script.
func NewMockClient(script ...*ChatCompletionResponse) *MockClient {
	return &MockClient{script: script}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// Enqueue appends a scripted response.
func (m *MockClient) Enqueue(resp *ChatCompletionResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// CreateChatCompletion pops the next scripted response, or fabricates one.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if len(m.script) > 0 {
		resp := m.script[0]
		m.script = m.script[1:]
		return resp, nil
	}

	content := "mock reply"
	if n := len(req.Messages); n > 0 {
		content = fmt.Sprintf("mock reply to: %s", req.Messages[n-1].Content)
	}
	return TextResponse(content), nil
}

// TextResponse builds a plain assistant response.
func TextResponse(content string) *ChatCompletionResponse {
	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   "mock",
		Choices: []Choice{
			{
				Index:        0,
				Message:      &ChatMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
	}
}

// ToolCallResponse builds a response in which the assistant requests one
// tool invocation with the given JSON arguments.
func ToolCallResponse(toolName, arguments string) *ChatCompletionResponse {
	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   "mock",
		Choices: []Choice{
			{
				Index: 0,
				Message: &ChatMessage{
					Role: "assistant",
					ToolCalls: []ToolCall{
						{
							ID:   fmt.Sprintf("call-%d", time.Now().UnixNano()),
							Type: "function",
							Function: ToolCallFunction{
								Name:      toolName,
								Arguments: arguments,
							},
						},
					},
				},
				FinishReason: "tool_calls",
			},
		},
	}
}
