package port

import "context"

// ChatRequest is a single system+user completion request.
type ChatRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
	// JSONMode asks the provider to constrain output to a JSON object where supported.
	JSONMode bool
}

// ChatResponse is the completion text plus usage accounting.
type ChatResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
}

// ChatCompleter abstracts an LLM chat-completion backend.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
