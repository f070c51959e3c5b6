package llm

import "context"

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the provider-neutral request shape.
type CompletionRequest struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float32
	// JSON asks the provider for a single JSON object when it supports it.
	JSON bool
}

// Completer is implemented by each provider client. Implementations return
// an error matching extract.ErrUnavailable for missing credentials, network
// failures, non-2xx replies and empty completions.
type Completer interface {
	Provider() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
