package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestUserRepository_Save(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("U1", "beginner", now, now).
		WillReturnRows(pgxmock.NewRows([]string{"created"}).AddRow(true))

	created, err := repo.Save(context.Background(), entities.NewUser("U1", now))
	require.NoError(t, err)
	assert.True(t, created)
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_UpdateTierMissingUser(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET tier")).
		WithArgs("ghost", "advanced").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateTier(context.Background(), "ghost", entities.TierAdvanced)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestQuestionRepository_CountBetween(t *testing.T) {
	mock := newMock(t)
	repo := NewQuestionRepository(mock)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	mock.ExpectQuery(regexp.QuoteMeta("FROM question_history")).
		WithArgs("U1", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountBetween(context.Background(), "U1", from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestQuizResultRepository_WeakAreas(t *testing.T) {
	mock := newMock(t)
	repo := NewQuizResultRepository(mock)
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY quiz_id")).
		WithArgs("U1", since).
		WillReturnRows(pgxmock.NewRows([]string{"quiz_id", "attempts", "correct"}).
			AddRow("q2", 4, 1).
			AddRow("q1", 2, 1))

	areas, err := repo.WeakAreas(context.Background(), "U1", since)
	require.NoError(t, err)
	require.Len(t, areas, 2)
	assert.Equal(t, "q2", areas[0].QuizID)
	assert.InDelta(t, 0.25, areas[0].Ratio(), 1e-9)
}

func TestReviewQueueRepository_HeadEmpty(t *testing.T) {
	mock := newMock(t)
	repo := NewReviewQueueRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY priority DESC, created_at ASC")).
		WithArgs("U1", 1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "item_id", "tier", "reason", "priority", "created_at"}))

	_, err := repo.Head(context.Background(), "U1")
	assert.ErrorIs(t, err, ErrReviewQueueEmpty)
}

func TestUserStateRepository_NoPendingQuiz(t *testing.T) {
	mock := newMock(t)
	repo := NewUserStateRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_state")).
		WithArgs("U1").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetPendingQuiz(context.Background(), "U1")
	assert.ErrorIs(t, err, ErrNoPendingQuiz)
}

func TestSubscriptionRepository_ReplaceRunsInTransaction(t *testing.T) {
	mock := newMock(t)
	repo := NewSubscriptionRepository(mock)
	sub := entities.NewPremiumSubscription("U1", "sub_1", "cus_1", time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET status = 'expired'")).
		WithArgs("U1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subscriptions")).
		WithArgs(sub.ID, "U1", "sub_1", "cus_1", "premium", "active",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Replace(context.Background(), sub))
}

func TestSubscriptionRepository_ReplaceRollsBackOnInsertFailure(t *testing.T) {
	mock := newMock(t)
	repo := NewSubscriptionRepository(mock)
	sub := entities.NewPremiumSubscription("U1", "sub_1", "cus_1", time.Now())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions")).
		WithArgs("U1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subscriptions")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Replace(context.Background(), sub)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSubscriptionRepository_CancelUnknown(t *testing.T) {
	mock := newMock(t)
	repo := NewSubscriptionRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions SET status = 'canceled'")).
		WithArgs("U1", "sub_x").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Cancel(context.Background(), "U1", "sub_x")
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}
