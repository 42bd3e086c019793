package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrUnavailable is returned when the language model could not be reached
// after the retry budget is spent.
var ErrUnavailable = errors.New("language model unavailable")

const retryBackoff = 500 * time.Millisecond

// Completer is the black-box text-completion capability the dialogue core
// depends on. Implementations may be slow and may fail.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client talks to the Gemini API using the official SDK
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini-backed completion client
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Complete sends a prompt and returns the model's text response. A transient
// failure is retried once with backoff; a second failure surfaces as
// ErrUnavailable so the caller can fall back to a static response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, prompt)
	if err == nil {
		return text, nil
	}

	log.Printf("❌ LLM request failed, retrying once: %v", err)
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	case <-time.After(retryBackoff):
	}

	text, err = c.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
