package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// ExecutionMeta holds operational metadata for a provider call.
type ExecutionMeta struct {
	Provider string
	Usage    TokenUsage
	Latency  time.Duration
}
