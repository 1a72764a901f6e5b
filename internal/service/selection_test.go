package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

func TestNextLesson_AvoidsRecentLessons(t *testing.T) {
	e := newEnv([]*entities.Lesson{
		lesson("L1", entities.TierBeginner),
		lesson("L2", entities.TierBeginner),
		lesson("I1", entities.TierIntermediate),
	}, nil)
	e.register("u1")
	ctx := context.Background()

	first, err := e.selection.NextLesson(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, e.selection.DeliverLesson(ctx, "u1", first))

	e.clock.Advance(time.Hour)
	second, err := e.selection.NextLesson(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Lesson.ID, second.Lesson.ID)
	assert.Equal(t, entities.TierBeginner, second.Lesson.Tier)
}

func TestNextLesson_RepeatsWhenPoolExhausted(t *testing.T) {
	e := newEnv([]*entities.Lesson{lesson("L1", entities.TierBeginner)}, nil)
	e.register("u1")
	ctx := context.Background()

	for day := 0; day < 8; day++ {
		pick, err := e.selection.NextLesson(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "L1", pick.Lesson.ID)
		require.NoError(t, e.selection.DeliverLesson(ctx, "u1", pick))
		e.clock.Advance(24 * time.Hour)
	}

	assert.Len(t, e.history.records, 8)
}

func TestNextLesson_ExclusionExpiresAfterSevenDays(t *testing.T) {
	l1 := lesson("L1", entities.TierBeginner)
	l2 := lesson("L2", entities.TierBeginner)
	e := newEnv([]*entities.Lesson{l1, l2}, nil)
	e.register("u1")
	ctx := context.Background()

	require.NoError(t, e.selection.DeliverLesson(ctx, "u1", &entities.LessonPick{Lesson: l1}))

	e.clock.Advance(time.Hour)
	for range 10 {
		pick, err := e.selection.NextLesson(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "L2", pick.Lesson.ID)
	}

	e.clock.Advance(entities.RecentLessonWindow)
	require.NoError(t, e.selection.DeliverLesson(ctx, "u1", &entities.LessonPick{Lesson: l2}))

	e.clock.Advance(time.Hour)
	for range 10 {
		pick, err := e.selection.NextLesson(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "L1", pick.Lesson.ID)
		assert.False(t, pick.FromReview())
	}
}

func TestNextLesson_EmptyTier(t *testing.T) {
	e := newEnv([]*entities.Lesson{lesson("A1", entities.TierAdvanced)}, nil)
	e.register("u1")

	_, err := e.selection.NextLesson(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNoLessonAvailable)
}

func TestNextLesson_ReviewHeadWins(t *testing.T) {
	e := newEnv([]*entities.Lesson{
		lesson("L1", entities.TierBeginner),
		lesson("L2", entities.TierBeginner),
	}, nil)
	e.register("u1")
	ctx := context.Background()

	_, err := e.review.Add(ctx, &entities.ReviewQueueEntry{
		UserID: "u1", ItemID: "L2", Tier: entities.TierBeginner,
		Priority: entities.DefaultReviewPriority, CreatedAt: e.clock.Now(),
	})
	require.NoError(t, err)

	pick, err := e.selection.NextLesson(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "L2", pick.Lesson.ID)
	assert.True(t, pick.FromReview())

	require.NoError(t, e.selection.DeliverLesson(ctx, "u1", pick))
	assert.Zero(t, e.review.count("u1"))
}

func TestNextQuiz_SetsPendingQuiz(t *testing.T) {
	e := newEnv(nil, []*entities.Quiz{quiz("Q1", entities.TierBeginner, 2)})
	e.register("u1")
	ctx := context.Background()

	q, err := e.selection.NextQuiz(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Q1", q.ID)

	pending, err := e.state.GetPendingQuiz(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Q1", pending.QuizID)
}

func TestNextQuiz_NoneForTier(t *testing.T) {
	e := newEnv(nil, []*entities.Quiz{quiz("Q1", entities.TierAdvanced, 0)})
	e.register("u1")

	_, err := e.selection.NextQuiz(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNoQuizAvailable)
}

func TestNextReview(t *testing.T) {
	e := newEnv(
		[]*entities.Lesson{lesson("L1", entities.TierBeginner)},
		[]*entities.Quiz{quiz("Q1", entities.TierBeginner, 1)},
	)
	e.register("u1")
	ctx := context.Background()
	now := e.clock.Now()

	add := func(item string, priority int, at time.Time) {
		_, err := e.review.Add(ctx, &entities.ReviewQueueEntry{
			UserID: "u1", ItemID: item, Priority: priority, CreatedAt: at,
		})
		require.NoError(t, err)
	}
	add("gone", 3, now)
	add("Q1", entities.WeakAreaPriority, now)
	add("L1", entities.DefaultReviewPriority, now)

	pick, q, err := e.selection.NextReview(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, pick)
	require.NotNil(t, q)
	assert.Equal(t, "Q1", q.ID)

	pending, err := e.state.GetPendingQuiz(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Q1", pending.QuizID)

	pick, q, err = e.selection.NextReview(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, q)
	require.NotNil(t, pick)
	assert.Equal(t, "L1", pick.Lesson.ID)

	pick, q, err = e.selection.NextReview(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, pick)
	assert.Nil(t, q)
	assert.Zero(t, e.review.count("u1"))
}

func TestNextLesson_WeakQuizServesLinkedLesson(t *testing.T) {
	q1 := quiz("Q1", entities.TierBeginner, 0)
	q1.LessonID = "L2"
	e := newEnv([]*entities.Lesson{
		lesson("L1", entities.TierBeginner),
		lesson("L2", entities.TierBeginner),
	}, []*entities.Quiz{q1})
	e.register("u1")
	ctx := context.Background()

	answerN(t, e, "u1", 0, 3)
	added, err := e.quizzes.AddWeakAreasToReview(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, added)

	pick, err := e.selection.NextLesson(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "L2", pick.Lesson.ID)
	assert.True(t, pick.FromReview())
	assert.Equal(t, "Q1", pick.Review.ItemID)

	require.NoError(t, e.selection.DeliverLesson(ctx, "u1", pick))
	assert.Zero(t, e.review.count("u1"))

	pick, err = e.selection.NextLesson(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, pick.FromReview())
	assert.Equal(t, "L1", pick.Lesson.ID)
}

func TestNextLesson_UnlinkedQuizDoesNotHideLessonEntries(t *testing.T) {
	e := newEnv([]*entities.Lesson{
		lesson("L1", entities.TierBeginner),
		lesson("L2", entities.TierBeginner),
	}, []*entities.Quiz{quiz("Q1", entities.TierBeginner, 0)})
	e.register("u1")
	ctx := context.Background()

	_, err := e.review.Add(ctx, &entities.ReviewQueueEntry{
		UserID: "u1", ItemID: "Q1", Tier: entities.TierBeginner,
		Priority: entities.WeakAreaPriority, CreatedAt: e.clock.Now(),
	})
	require.NoError(t, err)
	_, err = e.review.Add(ctx, &entities.ReviewQueueEntry{
		UserID: "u1", ItemID: "L2", Tier: entities.TierBeginner,
		Priority: entities.DefaultReviewPriority, CreatedAt: e.clock.Now(),
	})
	require.NoError(t, err)

	pick, err := e.selection.NextLesson(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "L2", pick.Lesson.ID)
	assert.True(t, pick.FromReview())

	require.NoError(t, e.selection.DeliverLesson(ctx, "u1", pick))

	head, err := e.review.Head(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Q1", head.ItemID)
}
