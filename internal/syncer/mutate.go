package syncer

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// PlaceholderPrefix marks ids assigned to optimistic todos before the fetch
// action answers.
const PlaceholderPrefix = "tmp-"

func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// operation is an in-flight optimistic mutation and the change that undoes it.
type operation struct {
	id      string
	kind    string
	inverse func([]model.Todo) []model.Todo
}

func (s *Syncer) begin(kind string, inverse func([]model.Todo) []model.Todo) operation {
	op := operation{id: uuid.NewString(), kind: kind, inverse: inverse}
	s.mu.Lock()
	s.pending[op.id] = op
	s.started++
	s.mu.Unlock()
	return op
}

func (s *Syncer) finish(op operation) {
	s.mu.Lock()
	delete(s.pending, op.id)
	s.mu.Unlock()
}

// fail undoes op according to the rollback strategy and surfaces msg.
func (s *Syncer) fail(op operation, msg string) {
	s.finish(op)
	switch s.rollback {
	case RollbackInverse:
		s.store.Reconcile(op.inverse)
	default:
		s.store.RollbackToPreviousState()
	}
	s.logger.Warn("optimistic mutation rolled back", "op", op.kind, "op_id", op.id, "error", msg)
	s.notify().Error(msg)
}

// Create prepends an optimistic todo with a placeholder id, then asks the
// fetch action for the real one and swaps it in.
func (s *Syncer) Create(ctx context.Context, input model.TodoInput) (model.Todo, error) {
	now := s.timestamp()
	optimistic := model.Todo{
		ID:        PlaceholderPrefix + uuid.NewString(),
		Title:     input.Title,
		Completed: input.Completed,
		UserID:    input.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	op := s.begin("create", removeByID(optimistic.ID))
	s.store.AddTodo(optimistic)
	s.notify().CloseDialog(DialogCreate)

	res := s.actions.CreateTodo(ctx, input)
	if !res.OK() {
		s.fail(op, res.Message())
		s.notify().ReopenCreate(input)
		return model.Todo{}, fmt.Errorf("create todo: %w", res.Err())
	}
	s.finish(op)

	if !res.Data.Equal(optimistic) {
		s.store.Reconcile(replaceByID(optimistic.ID, res.Data))
	}
	return res.Data, nil
}

// Update replaces the todo with the same id. todo must be the complete,
// already merged entity.
func (s *Syncer) Update(ctx context.Context, todo model.Todo) (model.Todo, error) {
	prev, idx := find(s.store.Todos(), todo.ID)

	optimistic := todo
	if optimistic.CreatedAt.IsZero() && idx >= 0 {
		optimistic.CreatedAt = prev.CreatedAt
	}
	optimistic.UpdatedAt = s.timestamp()
	if optimistic.UpdatedAt.Before(optimistic.CreatedAt) {
		optimistic.UpdatedAt = optimistic.CreatedAt
	}

	inverse := func(cur []model.Todo) []model.Todo { return cur }
	if idx >= 0 {
		inverse = replaceByID(todo.ID, prev)
	}
	op := s.begin("update", inverse)
	s.store.UpdateTodo(optimistic)
	s.notify().CloseDialog(DialogEdit)

	res := s.actions.UpdateTodo(ctx, todo.ID, model.PatchFrom(optimistic))
	if !res.OK() {
		s.fail(op, res.Message())
		return model.Todo{}, fmt.Errorf("update todo %s: %w", todo.ID, res.Err())
	}
	s.finish(op)

	if !res.Data.Equal(optimistic) {
		s.store.Reconcile(replaceByID(todo.ID, res.Data))
	}
	return res.Data, nil
}

// Toggle flips the completed flag of the todo with id.
func (s *Syncer) Toggle(ctx context.Context, id string) (model.Todo, error) {
	cur, idx := find(s.store.Todos(), id)
	if idx < 0 {
		return model.Todo{}, fmt.Errorf("toggle todo %s: not in store", id)
	}
	cur.Completed = !cur.Completed
	return s.Update(ctx, cur)
}

// Delete removes the todo with id optimistically.
func (s *Syncer) Delete(ctx context.Context, id string) error {
	prev, idx := find(s.store.Todos(), id)

	inverse := func(cur []model.Todo) []model.Todo { return cur }
	if idx >= 0 {
		inverse = insertAt(idx, prev)
	}
	op := s.begin("delete", inverse)
	s.store.DeleteTodo(id)
	s.notify().CloseDialog(DialogDelete)

	res := s.actions.DeleteTodo(ctx, id)
	if !res.OK() {
		s.fail(op, res.Message())
		return fmt.Errorf("delete todo %s: %w", id, res.Err())
	}
	s.finish(op)
	return nil
}

func find(todos []model.Todo, id string) (model.Todo, int) {
	i := slices.IndexFunc(todos, func(t model.Todo) bool { return t.ID == id })
	if i < 0 {
		return model.Todo{}, -1
	}
	return todos[i], i
}

func removeByID(id string) func([]model.Todo) []model.Todo {
	return func(cur []model.Todo) []model.Todo {
		return slices.DeleteFunc(cur, func(t model.Todo) bool { return t.ID == id })
	}
}

func replaceByID(id string, todo model.Todo) func([]model.Todo) []model.Todo {
	return func(cur []model.Todo) []model.Todo {
		for i := range cur {
			if cur[i].ID == id {
				cur[i] = todo
			}
		}
		return cur
	}
}

// insertAt puts todo back at idx, clamped to the current length, unless an
// entry with the same id is already present.
func insertAt(idx int, todo model.Todo) func([]model.Todo) []model.Todo {
	return func(cur []model.Todo) []model.Todo {
		if _, existing := find(cur, todo.ID); existing >= 0 {
			return cur
		}
		at := min(max(idx, 0), len(cur))
		return slices.Insert(cur, at, todo)
	}
}
