package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

func reportJob(name string, calls *atomic.Int32) JobFunc {
	return func(ctx context.Context) (*entities.DispatchReport, error) {
		calls.Add(1)
		return &entities.DispatchReport{Job: name, Attempted: 1, Delivered: 1}, nil
	}
}

func TestRegister(t *testing.T) {
	s := New(time.UTC, zap.NewNop())
	var calls atomic.Int32

	require.NoError(t, s.Register("weekly_quiz", "0 20 * * 0", reportJob("weekly_quiz", &calls)))

	err := s.Register("weekly_quiz", "0 20 * * 0", reportJob("weekly_quiz", &calls))
	assert.ErrorIs(t, err, ErrDuplicateJob)

	err = s.Register("broken", "not a spec", reportJob("broken", &calls))
	assert.Error(t, err)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "weekly_quiz", entries[0].Name)
	assert.Equal(t, "0 20 * * 0", entries[0].Spec)
}

func TestRun(t *testing.T) {
	s := New(time.UTC, zap.NewNop())
	var calls atomic.Int32
	require.NoError(t, s.Register("lesson_morning", "0 10 * * *", reportJob("lesson_morning", &calls)))

	report, err := s.Run(context.Background(), "lesson_morning")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Delivered)
	assert.EqualValues(t, 1, calls.Load())

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Same(t, report, entries[0].LastReport)

	_, err = s.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestRun_PropagatesJobError(t *testing.T) {
	s := New(time.UTC, zap.NewNop())
	boom := errors.New("list users failed")
	require.NoError(t, s.Register("weekly_summary", "0 21 * * 6", func(context.Context) (*entities.DispatchReport, error) {
		return nil, boom
	}))

	_, err := s.Run(context.Background(), "weekly_summary")
	assert.ErrorIs(t, err, boom)
}

func TestRun_SerializesJobs(t *testing.T) {
	s := New(time.UTC, zap.NewNop())

	var running, maxRunning atomic.Int32
	slow := func(context.Context) (*entities.DispatchReport, error) {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return &entities.DispatchReport{}, nil
	}
	require.NoError(t, s.Register("a", "@daily", slow))
	require.NoError(t, s.Register("b", "@daily", slow))

	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "a", "b"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := s.Run(context.Background(), name)
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	assert.EqualValues(t, 1, maxRunning.Load())
}

func TestStart_StopsOnCancel(t *testing.T) {
	s := New(time.UTC, zap.NewNop())
	var calls atomic.Int32
	require.NoError(t, s.Register("reengagement", "0 12 * * 1", reportJob("reengagement", &calls)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return !s.Entries()[0].Next.IsZero()
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Zero(t, calls.Load())
}
