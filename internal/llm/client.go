package llm

import "context"

// ChatMessage represents a generic chat turn in the prompt history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single completion request.
type Options struct {
	Temperature float64
	// JSONOnly constrains the response format to a JSON object where the
	// backend supports it.
	JSONOnly  bool
	MaxTokens int
}

// Client defines the behaviour the inference services rely on.
type Client interface {
	ChatCompletion(ctx context.Context, messages []ChatMessage, opts Options) (string, error)
}
