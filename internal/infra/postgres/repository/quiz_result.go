package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres"
)

// QuizResultRepository stores answered quizzes and computes statistics over them.
type QuizResultRepository struct {
	db postgres.DBTX
}

func NewQuizResultRepository(db postgres.DBTX) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Save appends a quiz result.
func (r *QuizResultRepository) Save(ctx context.Context, res *entities.QuizResult) error {
	query := `
		INSERT INTO quiz_results (user_id, quiz_id, answer_index, correct_index, is_correct, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query,
		res.UserID,
		res.QuizID,
		res.AnswerIndex,
		res.CorrectIndex,
		res.IsCorrect,
		res.AnsweredAt,
	)
	if err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}

	return nil
}

// Stats aggregates results answered at or after since.
func (r *QuizResultRepository) Stats(ctx context.Context, userID string, since time.Time) (entities.QuizStats, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_correct)
		FROM quiz_results
		WHERE user_id = $1 AND answered_at >= $2
	`

	var stats entities.QuizStats
	if err := r.db.QueryRow(ctx, query, userID, since).Scan(&stats.Total, &stats.Correct); err != nil {
		return entities.QuizStats{}, fmt.Errorf("get quiz stats: %w", err)
	}

	return stats, nil
}

// WeakAreas returns quizzes with at least one wrong answer since the given time,
// weakest first.
func (r *QuizResultRepository) WeakAreas(ctx context.Context, userID string, since time.Time) ([]entities.WeakArea, error) {
	query := `
		SELECT quiz_id, COUNT(*) AS attempts, COUNT(*) FILTER (WHERE is_correct) AS correct
		FROM quiz_results
		WHERE user_id = $1 AND answered_at >= $2
		GROUP BY quiz_id
		HAVING COUNT(*) FILTER (WHERE is_correct) < COUNT(*)
		ORDER BY COUNT(*) FILTER (WHERE is_correct)::float8 / COUNT(*) ASC, quiz_id
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("get weak areas: %w", err)
	}
	defer rows.Close()

	var areas []entities.WeakArea
	for rows.Next() {
		var a entities.WeakArea
		if err := rows.Scan(&a.QuizID, &a.Attempts, &a.Correct); err != nil {
			return nil, fmt.Errorf("scan weak area: %w", err)
		}
		areas = append(areas, a)
	}

	return areas, rows.Err()
}
