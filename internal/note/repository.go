package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ListItem is a note with its generated-plan count, as shown in listings.
type ListItem struct {
	Note
	PlanCount int `db:"plan_count"`
}

// Repository provides access to note persistence operations.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new note Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new note, assigning its ID and timestamps.
func (r *Repository) Create(ctx context.Context, n *Note) error {
	n.ID = uuid.NewString()
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, destination, start_date, end_date, total_budget, additional_notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Destination, n.StartDate, n.EndDate, n.TotalBudget, n.AdditionalNotes, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// GetByID returns a note, or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*Note, error) {
	var n Note
	err := r.db.GetContext(ctx, &n, `SELECT * FROM notes WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get note %s: %w", id, err)
	}
	return &n, nil
}

// ListByUser returns one page of the user's notes with plan counts, and
// the total number of notes for paging.
func (r *Repository) ListByUser(ctx context.Context, userID string, p ListParams) ([]ListItem, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count notes for user %s: %w", userID, err)
	}

	// SortField and SortDir come from the ParseListParams whitelist.
	query := fmt.Sprintf(`
		SELECT n.*, COUNT(p.id) AS plan_count
		FROM notes n
		LEFT JOIN plans p ON p.note_id = n.id
		WHERE n.user_id = ?
		GROUP BY n.id
		ORDER BY n.%s %s
		LIMIT ? OFFSET ?`, p.SortField, p.SortDir)

	items := []ListItem{}
	if err := r.db.SelectContext(ctx, &items, query, userID, p.Limit, p.Offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list notes for user %s: %w", userID, err)
	}
	return items, total, nil
}

// Update rewrites the mutable note fields.
func (r *Repository) Update(ctx context.Context, n *Note) error {
	n.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE notes
		SET destination = ?, start_date = ?, end_date = ?, total_budget = ?, additional_notes = ?, updated_at = ?
		WHERE id = ?`,
		n.Destination, n.StartDate, n.EndDate, n.TotalBudget, n.AdditionalNotes, n.UpdatedAt, n.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update note %s: %w", n.ID, err)
	}
	return nil
}

// Delete removes a note. Dependent plans are removed by the schema's
// ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	return nil
}
