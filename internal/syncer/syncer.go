// Package syncer applies UI mutations to the store optimistically, confirms
// them through the fetch actions and reconciles or rolls back the store with
// the outcome. It also owns initial loading, background refresh and paging.
package syncer

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/store"
)

// Actions is the subset of the fetch-action boundary the syncer needs.
type Actions interface {
	GetTodos(ctx context.Context, page, limit int) model.Result[[]model.Todo]
	GetTodoByID(ctx context.Context, id string) model.Result[model.Todo]
	GetUsers(ctx context.Context) model.Result[[]model.User]
	GetUserByID(ctx context.Context, id string) model.Result[model.User]
	CreateTodo(ctx context.Context, input model.TodoInput) model.Result[model.Todo]
	UpdateTodo(ctx context.Context, id string, patch model.TodoPatch) model.Result[model.Todo]
	DeleteTodo(ctx context.Context, id string) model.Result[string]
}

type Dialog int

const (
	DialogCreate Dialog = iota
	DialogEdit
	DialogDelete
)

func (d Dialog) String() string {
	switch d {
	case DialogCreate:
		return "create"
	case DialogEdit:
		return "edit"
	case DialogDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Notifier receives UI side effects. Implementations must not block.
type Notifier interface {
	CloseDialog(d Dialog)
	ReopenCreate(input model.TodoInput)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) CloseDialog(Dialog)           {}
func (nopNotifier) ReopenCreate(model.TodoInput) {}
func (nopNotifier) Error(string)                 {}

// Mode selects how todos are paged into the store.
type Mode int

const (
	// ModeAll fetches the whole collection once; the view pages client-side.
	ModeAll Mode = iota
	// ModeInfinite fetches fixed-size pages on demand and appends them.
	ModeInfinite
)

// RollbackStrategy selects how a failed mutation is undone.
type RollbackStrategy int

const (
	// RollbackSnapshot restores the store's single previous-state slot.
	// Overlapping mutations share that slot, so a failure can revert a
	// newer mutation instead of its own.
	RollbackSnapshot RollbackStrategy = iota
	// RollbackInverse applies the inverse of the failed operation only.
	RollbackInverse
)

const DefaultPageSize = 10

type Syncer struct {
	store    *store.TodoStore
	actions  Actions
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	rollback RollbackStrategy
	pageSize int

	mu      sync.Mutex
	mode    Mode
	users   []model.User
	pages   int
	hasNext bool
	pending map[string]operation
	// started counts mutations begun so far; Refresh compares it across
	// its fetch to detect overlap.
	started uint64
}

type Option func(*Syncer)

func WithNotifier(n Notifier) Option {
	return func(s *Syncer) { s.notifier = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

func WithMode(m Mode) Option {
	return func(s *Syncer) { s.mode = m }
}

func WithPageSize(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

func WithRollback(r RollbackStrategy) Option {
	return func(s *Syncer) { s.rollback = r }
}

func New(st *store.TodoStore, actions Actions, opts ...Option) *Syncer {
	s := &Syncer{
		store:    st,
		actions:  actions,
		notifier: nopNotifier{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		pageSize: DefaultPageSize,
		hasNext:  true,
		pending:  make(map[string]operation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Syncer) Store() *store.TodoStore {
	return s.store
}

// SetNotifier swaps the notifier. UIs that are built after the syncer use it
// to attach themselves.
func (s *Syncer) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

func (s *Syncer) notify() Notifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifier
}

func (s *Syncer) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Syncer) PageSize() int {
	return s.pageSize
}

// Users returns the users fetched by the last Load.
func (s *Syncer) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users)
}

// Pending reports how many optimistic operations await confirmation.
func (s *Syncer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Syncer) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
