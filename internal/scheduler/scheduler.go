// Package scheduler runs the broadcast jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
)

var (
	ErrUnknownJob   = errors.New("unknown job")
	ErrDuplicateJob = errors.New("job already registered")
)

// JobFunc is a broadcast job.
type JobFunc func(ctx context.Context) (*entities.DispatchReport, error)

// JobInfo describes a registered job for the admin surface.
type JobInfo struct {
	Name       string                   `json:"name"`
	Spec       string                   `json:"spec"`
	Next       time.Time                `json:"next"`
	Prev       time.Time                `json:"prev"`
	LastReport *entities.DispatchReport `json:"last_report,omitempty"`
}

type job struct {
	name   string
	spec   string
	fn     JobFunc
	id     cron.EntryID
	report *entities.DispatchReport
}

// Scheduler wraps a cron runner. Job executions never overlap, whether they
// are triggered by the schedule or run manually.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	runMu sync.Mutex // held for the duration of a job

	mu   sync.Mutex
	jobs map[string]*job
	base context.Context
}

// New creates a scheduler evaluating specs in loc.
func New(loc *time.Location, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		logger: logger,
		jobs:   make(map[string]*job),
		base:   context.Background(),
	}
}

// Register adds a job under name with a standard five-field cron spec.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	j := &job{name: name, spec: spec, fn: fn}
	id, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		ctx := s.base
		s.mu.Unlock()

		if _, err := s.execute(ctx, j); err != nil {
			s.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}

	j.id = id
	s.jobs[name] = j
	return nil
}

// Start runs the schedule until ctx is canceled, then waits for a running job
// to finish. Jobs run on a context that is not canceled with ctx so a batch in
// progress completes.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.base = context.WithoutCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("cron scheduler started", zap.Int("jobs", len(s.Entries())))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("cron scheduler stopped")
}

// Run executes a registered job immediately.
func (s *Scheduler) Run(ctx context.Context, name string) (*entities.DispatchReport, error) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	return s.execute(ctx, j)
}

// Entries lists the registered jobs ordered by name.
func (s *Scheduler) Entries() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		e := s.cron.Entry(j.id)
		infos = append(infos, JobInfo{
			Name:       j.name,
			Spec:       j.spec,
			Next:       e.Next,
			Prev:       e.Prev,
			LastReport: j.report,
		})
	}

	sort.Slice(infos, func(a, b int) bool { return infos[a].Name < infos[b].Name })
	return infos
}

func (s *Scheduler) execute(ctx context.Context, j *job) (*entities.DispatchReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.logger.Info("job started", zap.String("job", j.name))

	report, err := j.fn(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	j.report = report
	s.mu.Unlock()

	return report, nil
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
