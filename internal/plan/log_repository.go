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

// LogRepository provides access to generation log records. Logs are never
// deleted; they form the audit trail of generation attempts.
type LogRepository struct {
	db *sqlx.DB
}

// NewLogRepository creates a new LogRepository.
func NewLogRepository(db *sqlx.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Insert creates a log row in the given status and returns its ID.
func (r *LogRepository) Insert(ctx context.Context, userID, noteID, status string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO generation_logs (id, user_id, note_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, noteID, status, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create generation log: %w", err)
	}
	return id, nil
}

// Update applies a partial update to a log row.
func (r *LogRepository) Update(ctx context.Context, id string, u LogUpdate) error {
	query := `UPDATE generation_logs SET status = ?, updated_at = ?`
	args := []any{u.Status, time.Now().UTC()}

	if u.PlanID != nil {
		query += `, plan_id = ?`
		args = append(args, *u.PlanID)
	}
	if u.PromptTokens != nil {
		query += `, prompt_tokens = ?`
		args = append(args, *u.PromptTokens)
	}
	if u.CompletionTokens != nil {
		query += `, completion_tokens = ?`
		args = append(args, *u.CompletionTokens)
	}
	if u.ErrorCode != nil {
		query += `, error_code = ?`
		args = append(args, *u.ErrorCode)
	}
	if u.ErrorMessage != nil {
		query += `, error_message = ?`
		args = append(args, *u.ErrorMessage)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update generation log %s: %w", id, err)
	}
	return nil
}

// GetByID returns a log row, or nil when absent.
func (r *LogRepository) GetByID(ctx context.Context, id string) (*GenerationLog, error) {
	var l GenerationLog
	err := r.db.GetContext(ctx, &l, `SELECT * FROM generation_logs WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get generation log %s: %w", id, err)
	}
	return &l, nil
}
