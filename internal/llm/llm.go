package llm

import (
	"context"
	"time"

	"ai-travel-planner/internal/shared"
)

// Message roles accepted by the chat completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a chat completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes one logical chat completion call.
type ChatRequest struct {
	Messages []Message

	// Model overrides the client default when set.
	Model string

	// Params holds extra body fields such as temperature or max_tokens.
	Params map[string]any

	// ResponseFormat is sent verbatim as the response_format body field.
	ResponseFormat map[string]any

	// RequestID is used for server-side correlation. A fresh one is
	// generated when empty.
	RequestID string

	// Timeout applies per attempt; the client default is used when zero.
	Timeout time.Duration
}

// AIResponse is the result of a successful chat completion.
type AIResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Provider         string
	RequestID        string
}

// Usage converts the response counters into the shared accounting type.
func (r *AIResponse) Usage() shared.TokenUsage {
	return shared.TokenUsage{
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TotalTokens:      r.PromptTokens + r.CompletionTokens,
		Model:            r.Model,
	}
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
