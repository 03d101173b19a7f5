package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"ai-travel-planner/internal/llm"
	"ai-travel-planner/internal/note"
	"ai-travel-planner/internal/plan"
	"ai-travel-planner/internal/profile"
	"ai-travel-planner/internal/shared"
)

// GenerationLimit is the number of plan generations allowed per quota
// window.
const GenerationLimit = 5

// quotaWindowDays is the length of one quota window. The window is
// reset lazily on the first generation attempt after it elapses.
const quotaWindowDays = 30

// NoteStore loads trip notes for generation.
type NoteStore interface {
	GetByID(ctx context.Context, id string) (*note.Note, error)
}

// ProfileStore loads traveler profiles and maintains the generation quota.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*profile.Profile, error)
	UpdateQuota(ctx context.Context, userID string, count int, resetAt time.Time) error
	IncrementGeneration(ctx context.Context, userID string) (int, error)
}

// PlanStore persists generated plans.
type PlanStore interface {
	Insert(ctx context.Context, p *plan.Plan) error
}

// LogStore persists the generation audit trail.
type LogStore interface {
	Insert(ctx context.Context, userID, noteID, status string) (string, error)
	Update(ctx context.Context, id string, u plan.LogUpdate) error
}

// MetricsRecorder receives provider usage accounting. Recording is best
// effort and never fails a generation.
type MetricsRecorder interface {
	RecordMeta(meta shared.ExecutionMeta) error
}

// Generator runs the plan generation pipeline: eligibility checks, quota
// bookkeeping, prompt construction, the provider call, and persistence
// of both the plan and its generation log.
type Generator struct {
	notes    NoteStore
	profiles ProfileStore
	plans    PlanStore
	logs     LogStore
	textGen  llm.TextGenerator
	recorder MetricsRecorder
	provider string
	now      func() time.Time
}

// Option configures optional Generator behavior.
type Option func(*Generator)

// WithMetrics attaches a usage recorder. The provider name labels the
// recorded rows.
func WithMetrics(rec MetricsRecorder, provider string) Option {
	return func(g *Generator) {
		g.recorder = rec
		g.provider = provider
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator wires the pipeline dependencies.
func NewGenerator(notes NoteStore, profiles ProfileStore, plans PlanStore, logs LogStore, textGen llm.TextGenerator, opts ...Option) *Generator {
	g := &Generator{
		notes:    notes,
		profiles: profiles,
		plans:    plans,
		logs:     logs,
		textGen:  textGen,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result is the outcome of a successful generation.
type Result struct {
	Plan                 *plan.Plan
	RemainingGenerations int
	LimitResetAt         time.Time
}

// GeneratePlan runs one generation attempt for the given note on behalf
// of the given user.
//
// Failures before the generation log exists return their typed error
// directly. Once the log exists, any failure marks it failed before the
// error is returned, and unexpected failures are wrapped so callers see
// a stable generation error instead of internals.
func (g *Generator) GeneratePlan(ctx context.Context, noteID, userID string) (*Result, error) {
	n, err := g.notes.GetByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	if n == nil {
		return nil, &shared.NotFoundError{Resource: "note", ID: noteID}
	}
	if n.UserID != userID {
		return nil, &shared.ForbiddenError{Message: "you do not have permission to access this note"}
	}

	prof, err := g.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if prof == nil {
		return nil, &shared.NotFoundError{Resource: "profile", ID: userID}
	}
	if missing := prof.MissingFields(); len(missing) > 0 {
		return nil, &shared.IncompleteProfileError{MissingFields: missing}
	}

	resetAt, err := g.checkQuota(ctx, prof)
	if err != nil {
		return nil, err
	}

	logID, err := g.logs.Insert(ctx, userID, n.ID, plan.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation log: %w", err)
	}

	result, err := g.run(ctx, logID, n, prof, resetAt)
	if err != nil {
		g.failLog(ctx, logID, err)
		var genErr *shared.AIGenerationError
		if errors.As(err, &genErr) {
			return nil, err
		}
		return nil, &shared.AIGenerationError{
			Message: "failed to generate travel plan, please try again",
			Err:     err,
		}
	}
	return result, nil
}

// checkQuota applies the lazy reset and enforces the generation limit.
// It returns the reset timestamp in effect for this attempt.
func (g *Generator) checkQuota(ctx context.Context, prof *profile.Profile) (time.Time, error) {
	now := g.now()
	resetAt := prof.GenerationLimitResetAt
	count := prof.GenerationCount

	if !now.Before(resetAt) {
		resetAt = now.AddDate(0, 0, quotaWindowDays)
		count = 0
		if err := g.profiles.UpdateQuota(ctx, prof.UserID, count, resetAt); err != nil {
			return time.Time{}, fmt.Errorf("failed to reset generation quota: %w", err)
		}
	}

	if count >= GenerationLimit {
		return time.Time{}, &shared.GenerationLimitError{Limit: GenerationLimit, ResetAt: resetAt}
	}
	return resetAt, nil
}

// run executes every step after the log exists. Any error it returns
// causes the log to be marked failed by the caller.
func (g *Generator) run(ctx context.Context, logID string, n *note.Note, prof *profile.Profile, resetAt time.Time) (*Result, error) {
	if err := g.logs.Update(ctx, logID, plan.LogUpdate{Status: plan.StatusProcessing}); err != nil {
		return nil, fmt.Errorf("failed to mark generation log processing: %w", err)
	}

	prompt, err := BuildPrompt(promptDataFrom(n, prof))
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	start := time.Now()
	resp, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("provider call failed: %w", err)
	}
	g.record(resp.Usage, time.Since(start))

	p := &plan.Plan{
		NoteID:        n.ID,
		Content:       resp.Content,
		PromptText:    prompt,
		PromptVersion: PromptVersion,
	}
	if err := g.plans.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}

	promptTokens := resp.Usage.PromptTokens
	completionTokens := resp.Usage.CompletionTokens
	if err := g.logs.Update(ctx, logID, plan.LogUpdate{
		Status:           plan.StatusCompleted,
		PlanID:           &p.ID,
		PromptTokens:     &promptTokens,
		CompletionTokens: &completionTokens,
	}); err != nil {
		return nil, fmt.Errorf("failed to complete generation log: %w", err)
	}

	count, err := g.profiles.IncrementGeneration(ctx, prof.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update generation count: %w", err)
	}

	return &Result{
		Plan:                 p,
		RemainingGenerations: GenerationLimit - count,
		LimitResetAt:         resetAt,
	}, nil
}

func (g *Generator) record(usage shared.TokenUsage, latency time.Duration) {
	if g.recorder == nil {
		return
	}
	meta := shared.ExecutionMeta{Provider: g.provider, Usage: usage, Latency: latency}
	if err := g.recorder.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record execution metrics: %v", err)
	}
}

// failLog marks a generation log failed with a code derived from the
// cause. Errors here are logged, not returned: the original cause is
// what the caller needs to see.
func (g *Generator) failLog(ctx context.Context, logID string, cause error) {
	code := errorCode(cause)
	msg := cause.Error()
	if err := g.logs.Update(ctx, logID, plan.LogUpdate{
		Status:       plan.StatusFailed,
		ErrorCode:    &code,
		ErrorMessage: &msg,
	}); err != nil {
		log.Printf("Warning: failed to mark generation log %s as failed: %v", logID, err)
	}
}

// errorCode maps a failure cause to the stable code stored on the log.
func errorCode(err error) string {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return strings.ToUpper(apiErr.Code)
	}
	var tooLong *PromptTooLongError
	if errors.As(err, &tooLong) {
		return "PROMPT_TOO_LONG"
	}
	var genErr *shared.AIGenerationError
	if errors.As(err, &genErr) {
		return "AI_GENERATION_FAILED"
	}
	return "UNKNOWN_ERROR"
}

// promptDataFrom assembles prompt input from a note and profile. When
// the profile has no daily budget but the note carries a total, a daily
// figure is derived from the trip length.
func promptDataFrom(n *note.Note, prof *profile.Profile) PromptData {
	data := PromptData{
		Destination:     n.Destination,
		StartDate:       n.StartDate,
		EndDate:         n.EndDate,
		TotalBudget:     n.TotalBudget,
		DailyBudget:     prof.DailyBudget,
		Interests:       prof.Interests,
		OtherInterests:  prof.OtherInterests,
		AdditionalNotes: n.AdditionalNotes,
	}
	if prof.TravelStyle != nil {
		data.TravelStyle = *prof.TravelStyle
	}
	if data.DailyBudget == nil && n.TotalBudget != nil {
		days := tripDuration(n.StartDate, n.EndDate)
		if days > 0 {
			daily := math.Floor(*n.TotalBudget / float64(days))
			data.DailyBudget = &daily
		}
	}
	return data
}
