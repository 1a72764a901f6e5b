package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres"
)

// ResetRepository wipes a user's learning history while keeping the account and billing rows.
type ResetRepository struct {
	tx *postgres.Transactor
}

func NewResetRepository(db postgres.DBTX) *ResetRepository {
	return &ResetRepository{tx: postgres.NewTransactor(db)}
}

// ResetUser deletes learning history and returns the user to the beginner tier.
func (s *ResetRepository) ResetUser(ctx context.Context, userID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		for _, table := range []string{"lesson_history", "quiz_results", "review_queue", "user_state"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE user_id = $1", userID); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if _, err := tx.Exec(ctx, `UPDATE users SET tier = 'beginner' WHERE id = $1`, userID); err != nil {
			return fmt.Errorf("reset tier: %w", err)
		}
		return nil
	})
}
