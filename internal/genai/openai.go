package genai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/theendpage/go-farewell-backend/internal/config"
)

// ErrGeneration wraps every provider failure (network, auth, rate limit,
// malformed response). Callers only need to know the call failed; no retry
// is attempted and identical prompts are always re-sent.
var ErrGeneration = errors.New("generation request failed")

// Generator produces farewell text from a rendered instruction string.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIGenerator calls an OpenAI-compatible chat-completion endpoint with a
// fixed model and deterministic sampling (temperature 0). One outbound call
// per invocation, no caching.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIGenerator builds a generator from provider configuration.
// BaseURL, when set, points the client at any compatible host.
func NewOpenAIGenerator(cfg config.OpenAIConfig) *OpenAIGenerator {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(cc),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

// Generate sends the rendered prompt as a single user message and returns
// the raw generated text. Any provider error is wrapped in ErrGeneration.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// go-openai drops a zero temperature because of omitempty; the
		// smallest nonzero float is the accepted way to request 0.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: provider returned no choices", ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}
