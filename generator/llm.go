package generator

import "context"

// Message is one role-tagged turn in a model conversation.
type Message struct {
	Role    string
	Content string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LLMClient abstracts the generative backend so it can be swapped or mocked.
// Implementations pin their own sampling parameters and response contract.
type LLMClient interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
}

// LLMSettings is the base configuration handed to concrete implementations.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}
