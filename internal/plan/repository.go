package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WithNote is a plan joined with the core fields of its note.
type WithNote struct {
	Plan
	Destination string    `db:"destination"`
	StartDate   time.Time `db:"start_date"`
	EndDate     time.Time `db:"end_date"`
	NoteUserID  string    `db:"note_user_id"`
}

// Repository provides access to plan persistence operations.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new plan Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a generated plan, assigning its ID and timestamps.
func (r *Repository) Insert(ctx context.Context, p *Plan) error {
	p.ID = uuid.NewString()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plans (id, note_id, content, prompt_text, prompt_version, feedback, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.NoteID, p.Content, p.PromptText, p.PromptVersion, p.Feedback, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create plan record: %w", err)
	}
	return nil
}

// GetWithNote returns a plan joined with its note, or nil when absent.
// The note's owner is included so callers can check access.
func (r *Repository) GetWithNote(ctx context.Context, id string) (*WithNote, error) {
	var p WithNote
	err := r.db.GetContext(ctx, &p, `
		SELECT p.*, n.destination, n.start_date, n.end_date, n.user_id AS note_user_id
		FROM plans p
		JOIN notes n ON n.id = p.note_id
		WHERE p.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan %s: %w", id, err)
	}
	return &p, nil
}

// ListByNote returns all plans for a note, newest first.
func (r *Repository) ListByNote(ctx context.Context, noteID string) ([]Plan, error) {
	plans := []Plan{}
	err := r.db.SelectContext(ctx, &plans, `
		SELECT * FROM plans WHERE note_id = ? ORDER BY created_at DESC`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans for note %s: %w", noteID, err)
	}
	return plans, nil
}

// SetFeedback records a thumbs up/down for a plan.
func (r *Repository) SetFeedback(ctx context.Context, id string, feedback int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE plans SET feedback = ?, updated_at = ? WHERE id = ?`,
		feedback, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set feedback for plan %s: %w", id, err)
	}
	return nil
}

// Delete removes a plan.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete plan %s: %w", id, err)
	}
	return nil
}
