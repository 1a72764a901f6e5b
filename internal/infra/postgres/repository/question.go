package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres"
)

// QuestionRepository stores AI question events used for quota accounting.
type QuestionRepository struct {
	db postgres.DBTX
}

func NewQuestionRepository(db postgres.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Record appends a question event.
func (r *QuestionRepository) Record(ctx context.Context, e *entities.QuestionAskEvent) error {
	query := `
		INSERT INTO question_history (user_id, question, asked_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.Exec(ctx, query, e.UserID, e.Question, e.AskedAt); err != nil {
		return fmt.Errorf("record question: %w", err)
	}

	return nil
}

// CountBetween counts questions asked in [from, to).
func (r *QuestionRepository) CountBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM question_history
		WHERE user_id = $1 AND asked_at >= $2 AND asked_at < $3
	`

	var n int
	if err := r.db.QueryRow(ctx, query, userID, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}

	return n, nil
}
