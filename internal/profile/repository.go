package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository provides access to profile persistence operations.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new profile Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the user's profile, or nil when none exists.
func (r *Repository) Get(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := r.db.GetContext(ctx, &p, `SELECT * FROM profiles WHERE user_id = ?`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}
	return &p, nil
}

// Upsert creates or replaces the user's preference fields. Quota state is
// preserved on update and initialized on first insert.
func (r *Repository) Upsert(ctx context.Context, userID string, in Input) (*Profile, error) {
	now := time.Now().UTC()
	interests := Interests(in.Interests)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, travel_style, interests, other_interests, daily_budget, generation_count, generation_limit_reset_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			travel_style = excluded.travel_style,
			interests = excluded.interests,
			other_interests = excluded.other_interests,
			daily_budget = excluded.daily_budget,
			updated_at = excluded.updated_at`,
		userID, in.TravelStyle, interests, in.OtherInterests, in.DailyBudget,
		now.AddDate(0, 0, 30), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile for user %s: %w", userID, err)
	}
	return r.Get(ctx, userID)
}

// UpdateQuota rewrites the generation counter and its reset timestamp.
func (r *Repository) UpdateQuota(ctx context.Context, userID string, count int, resetAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET generation_count = ?, generation_limit_reset_at = ?, updated_at = ?
		WHERE user_id = ?`,
		count, resetAt, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quota for user %s: %w", userID, err)
	}
	return nil
}

// IncrementGeneration adds one to the generation counter and returns the
// updated value. Read-then-write; the narrow race window is accepted.
func (r *Repository) IncrementGeneration(ctx context.Context, userID string) (int, error) {
	p, err := r.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, fmt.Errorf("profile for user %s not found", userID)
	}

	count := p.GenerationCount + 1
	_, err = r.db.ExecContext(ctx, `
		UPDATE profiles SET generation_count = ?, updated_at = ? WHERE user_id = ?`,
		count, time.Now().UTC(), userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to increment generation count for user %s: %w", userID, err)
	}
	return count, nil
}
