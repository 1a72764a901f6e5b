package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres"
)

// LessonHistoryRepository stores the append-only log of delivered lessons.
type LessonHistoryRepository struct {
	db postgres.DBTX
}

func NewLessonHistoryRepository(db postgres.DBTX) *LessonHistoryRepository {
	return &LessonHistoryRepository{db: db}
}

// Record appends a send record.
func (r *LessonHistoryRepository) Record(ctx context.Context, rec *entities.LessonSendRecord) error {
	query := `
		INSERT INTO lesson_history (user_id, lesson_id, tier, sent_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.Exec(ctx, query, rec.UserID, rec.LessonID, string(rec.Tier), rec.SentAt); err != nil {
		return fmt.Errorf("record lesson: %w", err)
	}

	return nil
}

// RecentLessonIDs returns the distinct lessons sent to the user at or after since.
func (r *LessonHistoryRepository) RecentLessonIDs(ctx context.Context, userID string, since time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT lesson_id
		FROM lesson_history
		WHERE user_id = $1 AND sent_at >= $2
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("get recent lessons: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lesson id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CountSince counts lessons sent at or after since. A zero since counts all of them.
func (r *LessonHistoryRepository) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM lesson_history
		WHERE user_id = $1 AND sent_at >= $2
	`

	var n int
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count lessons: %w", err)
	}

	return n, nil
}
