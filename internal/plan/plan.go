package plan

import (
	"time"
)

// Feedback values a user can attach to a plan.
const (
	FeedbackPositive = 1
	FeedbackNegative = -1
)

// Plan is an AI-generated itinerary tied to a note. Only feedback and
// timestamps change after creation.
type Plan struct {
	ID            string    `db:"id"`
	NoteID        string    `db:"note_id"`
	Content       string    `db:"content"`
	PromptText    string    `db:"prompt_text"`
	PromptVersion string    `db:"prompt_version"`
	Feedback      *int      `db:"feedback"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Generation log statuses. A log only moves forward through
// pending -> processing -> completed|failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// GenerationLog is the audit record of one generation attempt.
type GenerationLog struct {
	ID               string    `db:"id"`
	UserID           string    `db:"user_id"`
	NoteID           string    `db:"note_id"`
	PlanID           *string   `db:"plan_id"`
	Status           string    `db:"status"`
	PromptTokens     *int      `db:"prompt_tokens"`
	CompletionTokens *int      `db:"completion_tokens"`
	ErrorCode        *string   `db:"error_code"`
	ErrorMessage     *string   `db:"error_message"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// LogUpdate is a partial update applied to a generation log. Nil fields
// are left untouched; Status is always written.
type LogUpdate struct {
	Status           string
	PlanID           *string
	PromptTokens     *int
	CompletionTokens *int
	ErrorCode        *string
	ErrorMessage     *string
}
