package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/repository"
)

// TodoService answers the todo endpoints of the mock API. Writes are
// validated and echoed back but never stored, like the public API it
// stands in for.
type TodoService struct {
	repo repository.TodoRepository
	now  func() time.Time
}

func NewTodoService(repo repository.TodoRepository) *TodoService {
	return &TodoService{repo: repo, now: time.Now}
}

func (s *TodoService) List(ctx context.Context, params repository.TodoListParams) ([]model.Todo, error) {
	if params.Page < 0 || params.Limit < 0 {
		return nil, fmt.Errorf("%w: _page and _limit must not be negative", ErrInvalidInput)
	}
	todos, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

func (s *TodoService) GetByID(ctx context.Context, id string) (model.Todo, error) {
	todo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}
	return todo, nil
}

// Create returns the todo as if it were stored, with the next id after the
// fixtures.
func (s *TodoService) Create(ctx context.Context, input model.TodoInput) (model.Todo, error) {
	if strings.TrimSpace(input.Title) == "" {
		return model.Todo{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to count todos: %w", err)
	}

	now := s.now().UTC()
	return model.Todo{
		ID:        strconv.Itoa(n + 1),
		Title:     input.Title,
		Completed: input.Completed,
		UserID:    input.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update merges patch into the stored todo and returns the result without
// keeping it.
func (s *TodoService) Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, fmt.Errorf("failed to get todo for update: %w", err)
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return model.Todo{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}

	updated := patch.Apply(existing)
	updated.ID = id
	updated.UpdatedAt = s.now().UTC()
	return updated, nil
}

// Delete accepts any id; there is nothing to remove.
func (s *TodoService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return nil
}
