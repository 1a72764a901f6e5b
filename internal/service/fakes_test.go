package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/prompt-study-bot/internal/domain/entities"
	"github.com/aliskhannn/prompt-study-bot/internal/infra/postgres/repository"
	catalog "github.com/aliskhannn/prompt-study-bot/internal/repository"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*entities.User
	order []string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*entities.User)}
}

func (f *fakeUsers) Save(_ context.Context, u *entities.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.users[u.ID]; ok {
		if u.LastActivityAt.After(existing.LastActivityAt) {
			existing.LastActivityAt = u.LastActivityAt
		}
		return false, nil
	}
	cp := *u
	f.users[u.ID] = &cp
	f.order = append(f.order, u.ID)
	return true, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) List(_ context.Context) ([]*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entities.User, 0, len(f.order))
	for _, id := range f.order {
		cp := *f.users[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUsers) UpdateTier(_ context.Context, id string, tier entities.Tier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Tier = tier
	return nil
}

type fakeHistory struct {
	mu      sync.Mutex
	records []entities.LessonSendRecord
}

func (f *fakeHistory) Record(_ context.Context, rec *entities.LessonSendRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeHistory) RecentLessonIDs(_ context.Context, userID string, since time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, r := range f.records {
		if r.UserID == userID && !r.SentAt.Before(since) {
			ids = append(ids, r.LessonID)
		}
	}
	return ids, nil
}

func (f *fakeHistory) CountSince(_ context.Context, userID string, since time.Time) (int, error) {
	ids, _ := f.RecentLessonIDs(context.Background(), userID, since)
	return len(ids), nil
}

type fakeResults struct {
	mu      sync.Mutex
	results []entities.QuizResult
}

func (f *fakeResults) Save(_ context.Context, r *entities.QuizResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, *r)
	return nil
}

func (f *fakeResults) Stats(_ context.Context, userID string, since time.Time) (entities.QuizStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s entities.QuizStats
	for _, r := range f.results {
		if r.UserID == userID && !r.AnsweredAt.Before(since) {
			s.Total++
			if r.IsCorrect {
				s.Correct++
			}
		}
	}
	return s, nil
}

func (f *fakeResults) WeakAreas(_ context.Context, userID string, since time.Time) ([]entities.WeakArea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byQuiz := make(map[string]*entities.WeakArea)
	for _, r := range f.results {
		if r.UserID != userID || r.AnsweredAt.Before(since) {
			continue
		}
		a, ok := byQuiz[r.QuizID]
		if !ok {
			a = &entities.WeakArea{QuizID: r.QuizID}
			byQuiz[r.QuizID] = a
		}
		a.Attempts++
		if r.IsCorrect {
			a.Correct++
		}
	}
	var out []entities.WeakArea
	for _, a := range byQuiz {
		if a.Correct < a.Attempts {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ratio() != out[j].Ratio() {
			return out[i].Ratio() < out[j].Ratio()
		}
		return out[i].QuizID < out[j].QuizID
	})
	return out, nil
}

type fakeReview struct {
	mu      sync.Mutex
	nextID  int64
	entries []*entities.ReviewQueueEntry
}

func (f *fakeReview) Add(_ context.Context, e *entities.ReviewQueueEntry) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *e
	cp.ID = f.nextID
	f.entries = append(f.entries, &cp)
	return cp.ID, nil
}

func (f *fakeReview) Head(_ context.Context, userID string) (*entities.ReviewQueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var head *entities.ReviewQueueEntry
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		if head == nil ||
			e.Priority > head.Priority ||
			(e.Priority == head.Priority && e.CreatedAt.Before(head.CreatedAt)) {
			head = e
		}
	}
	if head == nil {
		return nil, repository.ErrReviewQueueEmpty
	}
	cp := *head
	return &cp, nil
}

func (f *fakeReview) List(_ context.Context, userID string, limit int) ([]*entities.ReviewQueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.ReviewQueueEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReview) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeReview) count(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if e.UserID == userID {
			n++
		}
	}
	return n
}

type fakeState struct {
	mu      sync.Mutex
	pending map[string]entities.PendingQuiz
}

func newFakeState() *fakeState {
	return &fakeState{pending: make(map[string]entities.PendingQuiz)}
}

func (f *fakeState) SetPendingQuiz(_ context.Context, p *entities.PendingQuiz) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[p.UserID] = *p
	return nil
}

func (f *fakeState) GetPendingQuiz(_ context.Context, userID string) (*entities.PendingQuiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pending[userID]
	if !ok {
		return nil, repository.ErrNoPendingQuiz
	}
	return &p, nil
}

type fakeQuestions struct {
	mu        sync.Mutex
	events    []entities.QuestionAskEvent
	recordErr error
}

func (f *fakeQuestions) Record(_ context.Context, e *entities.QuestionAskEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeQuestions) CountBetween(_ context.Context, userID string, from, to time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.UserID == userID && !e.AskedAt.Before(from) && e.AskedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

type fakeSubscriptions struct {
	mu   sync.Mutex
	rows []*entities.Subscription
}

func (f *fakeSubscriptions) LatestActive(_ context.Context, userID string) (*entities.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.rows) - 1; i >= 0; i-- {
		s := f.rows[i]
		if s.UserID == userID && s.Status == entities.SubscriptionActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSubscriptionNotFound
}

func (f *fakeSubscriptions) Replace(_ context.Context, sub *entities.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.rows {
		if s.UserID == sub.UserID && s.Status == entities.SubscriptionActive {
			s.Status = entities.SubscriptionExpired
		}
	}
	cp := *sub
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeSubscriptions) Cancel(_ context.Context, userID, providerSubID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.rows {
		if s.UserID == userID && s.ProviderSubscriptionID == providerSubID && s.Status == entities.SubscriptionActive {
			s.Status = entities.SubscriptionCanceled
			return nil
		}
	}
	return repository.ErrSubscriptionNotFound
}

func (f *fakeSubscriptions) UserIDByProviderSubscription(_ context.Context, providerSubID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].ProviderSubscriptionID == providerSubID {
			return f.rows[i].UserID, nil
		}
	}
	return "", repository.ErrSubscriptionNotFound
}

func (f *fakeSubscriptions) activeCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.rows {
		if s.UserID == userID && s.Status == entities.SubscriptionActive {
			n++
		}
	}
	return n
}

type sentMessage struct {
	UserID string
	Msg    entities.Message
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentMessage
	failOn map[string]bool
}

func (f *fakeNotifier) Notify(_ context.Context, userID string, msg entities.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[userID] {
		return errors.New("blocked by user")
	}
	f.sent = append(f.sent, sentMessage{UserID: userID, Msg: msg})
	return nil
}

func (f *fakeNotifier) kinds(userID string) []entities.MessageKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.MessageKind
	for _, s := range f.sent {
		if s.UserID == userID {
			out = append(out, s.Msg.Kind)
		}
	}
	return out
}

type fakeCompleter struct {
	answer string
	err    error
	calls  int
}

func (f *fakeCompleter) Complete(_ context.Context, question string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.answer + question, nil
}

type fakeProvider struct{}

func (fakeProvider) CheckoutURL(_ context.Context, userID string) (string, error) {
	return "https://checkout.test/" + userID, nil
}

func (fakeProvider) PortalURL(_ context.Context, customerID string) (string, error) {
	return "https://portal.test/" + customerID, nil
}

// env wires every service over in-memory fakes.
type env struct {
	clock         *fakeClock
	users         *fakeUsers
	history       *fakeHistory
	results       *fakeResults
	review        *fakeReview
	state         *fakeState
	questions     *fakeQuestions
	subscriptions *fakeSubscriptions
	notifier      *fakeNotifier
	completer     *fakeCompleter
	catalog       *catalog.Catalog

	userSvc      *UserService
	entitlements *EntitlementService
	selection    *SelectionService
	quizzes      *QuizService
	progress     *ProgressService
	assistant    *AssistantService
	billing      *BillingService
	chat         *ChatService
	dispatcher   *Dispatcher
}

func newEnv(lessons []*entities.Lesson, quizzes []*entities.Quiz) *env {
	cat, err := catalog.NewCatalog(lessons, quizzes)
	if err != nil {
		panic(err)
	}

	e := &env{
		clock:         &fakeClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		users:         newFakeUsers(),
		history:       &fakeHistory{},
		results:       &fakeResults{},
		review:        &fakeReview{},
		state:         newFakeState(),
		questions:     &fakeQuestions{},
		subscriptions: &fakeSubscriptions{},
		notifier:      &fakeNotifier{failOn: map[string]bool{}},
		completer:     &fakeCompleter{answer: "answer: "},
		catalog:       cat,
	}

	logger := zap.NewNop()
	clock := NewClock(time.UTC, e.clock.Now)

	e.userSvc = NewUserService(e.users, nil, clock)
	e.entitlements = NewEntitlementService(e.subscriptions, e.questions, entities.DefaultQuotaLimits, clock, logger)
	e.entitlements.SetNotifier(e.notifier)
	e.selection = NewSelectionService(e.users, e.history, e.review, e.state, cat, clock)
	e.quizzes = NewQuizService(e.users, e.results, e.review, e.state, cat, e.selection, clock, logger)
	e.progress = NewProgressService(e.users, e.history, e.results, clock)
	e.assistant = NewAssistantService(NewModerator(), e.entitlements, e.completer, clock, logger)
	e.billing = NewBillingService(fakeProvider{}, e.subscriptions)
	e.chat = NewChatService(e.selection, e.quizzes, e.progress, e.entitlements, e.assistant, e.billing, clock)
	e.dispatcher = NewDispatcher(e.users, e.selection, e.quizzes, e.progress, e.notifier, clock, 0, logger)

	return e
}

func (e *env) register(ids ...string) {
	for _, id := range ids {
		if _, err := e.userSvc.EnsureUser(context.Background(), id); err != nil {
			panic(err)
		}
	}
}

func quiz(id string, tier entities.Tier, correct int) *entities.Quiz {
	return &entities.Quiz{
		ID:            id,
		Question:      "question " + id,
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: correct,
		Explanation:   "because",
		Tier:          tier,
	}
}

func lesson(id string, tier entities.Tier) *entities.Lesson {
	return &entities.Lesson{ID: id, Title: "lesson " + id, Point: "point", Tier: tier}
}
