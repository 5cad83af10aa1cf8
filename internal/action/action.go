// Package action is the boundary between the UI and the remote API. Every
// call returns a model.Result envelope; nothing below this layer leaks an
// error to the caller.
package action

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// Fallback messages used when the underlying error carries none.
const (
	MsgFetchTodos   = "Failed to fetch todos"
	MsgFetchTodo    = "Failed to fetch todo"
	MsgCreateTodo   = "Failed to create todo"
	MsgUpdateTodo   = "Failed to update todo"
	MsgDeleteTodo   = "Failed to delete todo"
	MsgFetchUsers   = "Failed to fetch users"
	MsgFetchUser    = "Failed to fetch user"
	MsgTodoNotFound = "Todo not found"
)

// FirstSyntheticID is the first id handed out for client-created todos. It sits
// above the id range served by the backing API.
const FirstSyntheticID = 1000

type TodoAPI interface {
	ListTodos(ctx context.Context, page, limit int) ([]model.Todo, error)
	GetTodo(ctx context.Context, id string) (model.Todo, error)
	CreateTodo(ctx context.Context, input model.TodoInput) (model.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error)
	DeleteTodo(ctx context.Context, id string) (string, error)
}

type UserAPI interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
}

// Policy controls how remote write failures are reported.
type Policy struct {
	// MaskWriteFailures reports create/update/delete as successful with
	// synthesized data even when the remote call fails. The backing API
	// accepts writes without persisting them, so local state stays the
	// source of truth.
	MaskWriteFailures bool
}

func DefaultPolicy() Policy {
	return Policy{MaskWriteFailures: true}
}

type Actions struct {
	todos  TodoAPI
	users  UserAPI
	policy Policy
	nextID atomic.Int64
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Actions)

func WithPolicy(p Policy) Option {
	return func(a *Actions) { a.policy = p }
}

func WithClock(now func() time.Time) Option {
	return func(a *Actions) { a.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Actions) { a.logger = logger }
}

func New(todos TodoAPI, users UserAPI, opts ...Option) *Actions {
	a := &Actions{
		todos:  todos,
		users:  users,
		policy: DefaultPolicy(),
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	a.nextID.Store(FirstSyntheticID)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Actions) Policy() Policy {
	return a.policy
}

func (a *Actions) syntheticID() string {
	return strconv.FormatInt(a.nextID.Add(1)-1, 10)
}

func (a *Actions) timestamp() time.Time {
	return a.now().UTC().Truncate(time.Millisecond)
}

// errMessage returns err's message, or fallback when it is empty.
func errMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
