package repository

import (
	"context"
	"errors"

	"github.com/jaekwang-park/taskboard/internal/model"
)

var ErrNotFound = errors.New("record not found")

// TodoListParams narrows a todo listing. Page and Limit are 1-based and
// only apply when both are positive.
type TodoListParams struct {
	UserID    string
	Completed *bool
	Page      int
	Limit     int
}

func (p TodoListParams) paged() bool {
	return p.Page > 0 && p.Limit > 0
}

func (p TodoListParams) offset() int {
	return (p.Page - 1) * p.Limit
}

type TodoRepository interface {
	List(ctx context.Context, params TodoListParams) ([]model.Todo, error)
	GetByID(ctx context.Context, id string) (model.Todo, error)
	Count(ctx context.Context) (int, error)
}

type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}
