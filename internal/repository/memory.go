package repository

import (
	"context"
	"slices"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// MemoryTodoRepository serves a fixed fixture set. It never changes after
// construction, so reads need no locking.
type MemoryTodoRepository struct {
	todos []model.Todo
}

func NewMemoryTodo(todos []model.Todo) *MemoryTodoRepository {
	return &MemoryTodoRepository{todos: slices.Clone(todos)}
}

func (r *MemoryTodoRepository) List(_ context.Context, params TodoListParams) ([]model.Todo, error) {
	out := make([]model.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		if params.UserID != "" && t.UserID != params.UserID {
			continue
		}
		if params.Completed != nil && t.Completed != *params.Completed {
			continue
		}
		out = append(out, t)
	}

	if !params.paged() {
		return out, nil
	}
	start := min(params.offset(), len(out))
	end := min(start+params.Limit, len(out))
	return out[start:end], nil
}

func (r *MemoryTodoRepository) GetByID(_ context.Context, id string) (model.Todo, error) {
	for _, t := range r.todos {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Todo{}, ErrNotFound
}

func (r *MemoryTodoRepository) Count(context.Context) (int, error) {
	return len(r.todos), nil
}

type MemoryUserRepository struct {
	users []model.User
}

func NewMemoryUser(users []model.User) *MemoryUserRepository {
	return &MemoryUserRepository{users: slices.Clone(users)}
}

func (r *MemoryUserRepository) List(context.Context) ([]model.User, error) {
	return slices.Clone(r.users), nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

var (
	_ TodoRepository = (*MemoryTodoRepository)(nil)
	_ UserRepository = (*MemoryUserRepository)(nil)
)
