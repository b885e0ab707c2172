package coach

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// LLMClient is the interface both coach backends satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the feedback text and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Feedback is a short study note; it never needs a long completion.
const (
	feedbackMaxTokens   = 600
	feedbackTemperature = 0.3
	feedbackAttempts    = 3
)

var errEmptyFeedback = errors.New("model returned no feedback text")

// NewClient picks the backend from config: the mock when asked for or when
// no API key is present, the Anthropic API otherwise. It returns the model
// name reported back to learners.
func NewClient(apiKey, model string, mock bool) (LLMClient, string) {
	if mock || apiKey == "" {
		log.Println("[coach] using mock feedback")
		return NewMockClient(), "mock"
	}
	log.Println("[coach] using Anthropic API:", model)
	return NewAPIClient(apiKey, model), model
}

// ── Anthropic ────────────────────────────────────────────

type APIClient struct {
	messages anthropic.MessageService
	model    anthropic.Model
	attempts int
	backoff  time.Duration
}

func NewAPIClient(apiKey, model string) *APIClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &APIClient{
		messages: client.Messages,
		model:    anthropic.Model(model),
		attempts: feedbackAttempts,
		backoff:  time.Second,
	}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	message, err := c.send(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   feedbackMaxTokens,
		Temperature: param.NewOpt(feedbackTemperature),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, err
	}

	text := joinText(message.Content)
	if text == "" {
		return nil, errEmptyFeedback
	}
	return &LLMResponse{
		Content:      text,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

// send retries failed requests with a linear backoff. A cancelled request
// context ends the loop at once.
func (c *APIClient) send(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	for attempt := 1; ; attempt++ {
		message, err := c.messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		if ctx.Err() != nil || attempt >= c.attempts {
			return nil, fmt.Errorf("coach feedback request (%d attempts): %w", attempt, err)
		}

		wait := retryDelay(c.backoff, attempt)
		log.Printf("[coach] feedback request %d/%d failed, next try in %v: %v", attempt, c.attempts, wait, err)
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("coach feedback request: %w", ctx.Err())
		}
	}
}

func retryDelay(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(attempt)
}

// joinText concatenates the text blocks of a reply in order.
func joinText(blocks []anthropic.ContentBlockUnion) string {
	var b strings.Builder
	for _, block := range blocks {
		if block.Type != "text" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(block.Text))
	}
	return strings.TrimSpace(b.String())
}

// ── Mock ─────────────────────────────────────────────────

// MockClient answers offline with a canned study plan built from the prompt.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	feedback := buildMockFeedback(userPrompt)
	return &LLMResponse{
		Content:      feedback,
		PromptTokens: len(strings.Fields(systemPrompt)) + len(strings.Fields(userPrompt)),
		OutputTokens: len(strings.Fields(feedback)),
	}, nil
}
