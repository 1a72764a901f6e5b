package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres"
)

var ErrReviewQueueEmpty = errors.New("review queue is empty")

// ReviewQueueRepository manages per-user review entries.
type ReviewQueueRepository struct {
	db postgres.DBTX
}

func NewReviewQueueRepository(db postgres.DBTX) *ReviewQueueRepository {
	return &ReviewQueueRepository{db: db}
}

// Add inserts an entry. Duplicates of the same item are allowed.
func (r *ReviewQueueRepository) Add(ctx context.Context, e *entities.ReviewQueueEntry) (int64, error) {
	query := `
		INSERT INTO review_queue (user_id, item_id, tier, reason, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		e.UserID,
		e.ItemID,
		string(e.Tier),
		e.Reason,
		e.Priority,
		e.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add review entry: %w", err)
	}

	return id, nil
}

// List returns up to limit entries in consumption order.
func (r *ReviewQueueRepository) List(ctx context.Context, userID string, limit int) ([]*entities.ReviewQueueEntry, error) {
	query := `
		SELECT id, user_id, item_id, tier, reason, priority, created_at
		FROM review_queue
		WHERE user_id = $1
		ORDER BY priority DESC, created_at ASC, id ASC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list review entries: %w", err)
	}
	defer rows.Close()

	var entries []*entities.ReviewQueueEntry
	for rows.Next() {
		var (
			e    entities.ReviewQueueEntry
			tier string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.ItemID, &tier, &e.Reason, &e.Priority, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review entry: %w", err)
		}
		e.Tier = entities.Tier(tier)
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// Delete removes a consumed entry.
func (r *ReviewQueueRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM review_queue WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete review entry: %w", err)
	}

	return nil
}

// Head returns the next entry to consume.
func (r *ReviewQueueRepository) Head(ctx context.Context, userID string) (*entities.ReviewQueueEntry, error) {
	entries, err := r.List(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrReviewQueueEmpty
	}

	return entries[0], nil
}
