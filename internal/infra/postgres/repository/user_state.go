package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres"
)

var ErrNoPendingQuiz = errors.New("no pending quiz")

// UserStateRepository keeps the single pending quiz per user.
type UserStateRepository struct {
	db postgres.DBTX
}

func NewUserStateRepository(db postgres.DBTX) *UserStateRepository {
	return &UserStateRepository{db: db}
}

// SetPendingQuiz overwrites the pending quiz of a user.
func (r *UserStateRepository) SetPendingQuiz(ctx context.Context, p *entities.PendingQuiz) error {
	query := `
		INSERT INTO user_state (user_id, last_quiz_id, issued_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			last_quiz_id = EXCLUDED.last_quiz_id,
			issued_at = EXCLUDED.issued_at
	`

	if _, err := r.db.Exec(ctx, query, p.UserID, p.QuizID, p.IssuedAt); err != nil {
		return fmt.Errorf("set pending quiz: %w", err)
	}

	return nil
}

// GetPendingQuiz returns the last quiz issued to a user.
func (r *UserStateRepository) GetPendingQuiz(ctx context.Context, userID string) (*entities.PendingQuiz, error) {
	query := `
		SELECT user_id, last_quiz_id, issued_at
		FROM user_state
		WHERE user_id = $1
	`

	var p entities.PendingQuiz
	if err := r.db.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.QuizID, &p.IssuedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPendingQuiz
		}
		return nil, fmt.Errorf("get pending quiz: %w", err)
	}

	return &p, nil
}
