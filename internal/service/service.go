// Package service implements the chat agent: input guarding, the tool-call
// loop against the LLM, session history, and direct rate lookups.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dmytrop/nbu-agent/internal/adapter/llm"
	"github.com/dmytrop/nbu-agent/internal/adapter/nbu"
	"github.com/dmytrop/nbu-agent/internal/domain"
	"github.com/dmytrop/nbu-agent/internal/guard"
	"github.com/dmytrop/nbu-agent/internal/store"
	"github.com/dmytrop/nbu-agent/internal/tools"
)

// RefusalMessage is returned verbatim when the input guard blocks a message.
const RefusalMessage = "I can only help with currency exchange rates from the National Bank of Ukraine. " +
	"Please ask about currency rates without trying to change my behavior."

// ToolUsedCurrency is the value reported in responses when the
// exchange-rate tool ran during the turn.
const ToolUsedCurrency = "currency_rates"

// Options configures a Service.
type Options struct {
	Model          string
	Temperature    float64
	MaxIterations  int
	Now            func() time.Time // test hook, defaults to time.Now
}

// Service wires the guard, session store, LLM client, and tool registry
// into the chat agent.
type Service struct {
	store     store.Store
	llm       llm.LLMClient
	registry  *tools.Registry
	validator *guard.Validator
	nbu       *nbu.Client
	opts      Options
	log       *zap.Logger
}

// New creates the chat agent service.
func New(st store.Store, client llm.LLMClient, registry *tools.Registry, validator *guard.Validator, nbuClient *nbu.Client, opts Options, log *zap.Logger) *Service {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 3
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     st,
		llm:       client,
		registry:  registry,
		validator: validator,
		nbu:       nbuClient,
		opts:      opts,
		log:       log,
	}
}

// Chat handles one user message. Blocked input still resolves a session id
// but leaves history untouched.
func (s *Service) Chat(ctx context.Context, req domain.ChatRequest) (domain.ChatResult, error) {
	outcome, err := s.validator.Validate(ctx, req.Message)
	if err != nil {
		return domain.ChatResult{}, fmt.Errorf("validate input: %w", err)
	}

	sessionID, err := s.store.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		return domain.ChatResult{}, fmt.Errorf("resolve session: %w", err)
	}

	if !outcome.Safe {
		s.log.Warn("message blocked by input guard",
			zap.String("session_id", sessionID))
		return domain.ChatResult{
			Response:  RefusalMessage,
			SessionID: sessionID,
			Blocked:   true,
		}, nil
	}

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		return domain.ChatResult{}, fmt.Errorf("load history: %w", err)
	}

	reply, toolUsed, err := s.runAgent(ctx, history, outcome.Sanitized)
	if err != nil {
		return domain.ChatResult{}, err
	}

	// History keeps the original message, not the sanitized form, so users
	// see what they actually sent.
	if err := s.store.Append(ctx, sessionID, req.Message, reply); err != nil {
		return domain.ChatResult{}, fmt.Errorf("append history: %w", err)
	}

	return domain.ChatResult{
		Response:  reply,
		SessionID: sessionID,
		ToolUsed:  toolUsed,
	}, nil
}

// runAgent drives the tool-call loop until the model produces a plain
// answer or the iteration cap is hit.
func (s *Service) runAgent(ctx context.Context, history []domain.Turn, message string) (reply, toolUsed string, err error) {
	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: s.systemPrompt()})
	for _, turn := range history {
		messages = append(messages, llm.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: message})

	temperature := s.opts.Temperature

	for i := 0; i < s.opts.MaxIterations; i++ {
		resp, err := s.llm.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
			Model:       s.opts.Model,
			Messages:    messages,
			Temperature: &temperature,
			Tools:       s.registry.Definitions(),
		})
		if err != nil {
			return "", "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
			return "", "", fmt.Errorf("chat completion: empty response")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return msg.Content, toolUsed, nil
		}

		messages = append(messages, *msg)
		for _, call := range msg.ToolCalls {
			result, err := s.registry.Execute(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			if err != nil {
				s.log.Error("tool execution failed",
					zap.String("tool", call.Function.Name),
					zap.Error(err))
				result = fmt.Sprintf("tool error: %v", err)
			}
			if call.Function.Name == tools.CurrencyToolName {
				toolUsed = ToolUsedCurrency
			}
			messages = append(messages, llm.ChatMessage{
				Role:       "tool",
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	// The cap exists to bound cost on a misbehaving model; surface what we
	// have instead of failing the request.
	s.log.Warn("tool iteration cap reached", zap.Int("max_iterations", s.opts.MaxIterations))
	return "I could not complete the request within the allowed number of steps. Please try rephrasing your question.", toolUsed, nil
}

// History returns a session's turns. Unknown sessions map to
// domain.ErrSessionNotFound.
func (s *Service) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	ok, err := s.store.Exists(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s.store.History(ctx, sessionID)
}

// ClearHistory deletes a session and its turns.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) error {
	ok, err := s.store.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Sessions lists all live sessions with message counts and previews.
func (s *Service) Sessions(ctx context.Context) ([]domain.SessionSummary, error) {
	return s.store.List(ctx)
}

// Rates fetches exchange rates directly, bypassing the model.
func (s *Service) Rates(ctx context.Context, valcode, date string) (domain.CurrencyRatesResponse, error) {
	quotes, err := s.nbu.Fetch(ctx, valcode, date)
	if err != nil {
		return domain.CurrencyRatesResponse{}, err
	}
	// The response date is the upstream exchange date (DD.MM.YYYY), not the
	// caller's query value; an empty payload falls back to today.
	respDate := s.opts.Now().Format("02.01.2006")
	if len(quotes) > 0 {
		respDate = quotes[0].ExchangeDate
	}
	return domain.CurrencyRatesResponse{
		Rates:  quotes,
		Date:   respDate,
		Source: domain.CurrencySource,
	}, nil
}

// TestTool runs the exchange-rate tool directly with the given currency
// code and returns the text the model would see.
func (s *Service) TestTool(ctx context.Context, valcode string) (string, error) {
	args, err := json.Marshal(map[string]string{"valcode": valcode})
	if err != nil {
		return "", err
	}
	return s.registry.Execute(ctx, tools.CurrencyToolName, args)
}
