package action

import (
	"context"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/slug"
)

// GetTodos lists todos; page and limit are forwarded unchanged.
func (a *Actions) GetTodos(ctx context.Context, page, limit int) model.Result[[]model.Todo] {
	todos, err := a.todos.ListTodos(ctx, page, limit)
	if err != nil {
		return model.Fail[[]model.Todo](errMessage(err, MsgFetchTodos))
	}
	return model.OK(todos)
}

func (a *Actions) GetTodoByID(ctx context.Context, id string) model.Result[model.Todo] {
	todo, err := a.todos.GetTodo(ctx, id)
	if err != nil {
		return model.Fail[model.Todo](errMessage(err, MsgFetchTodo))
	}
	return model.OK(todo)
}

// GetTodoBySlug scans the full collection for the first todo whose title
// slug equals s. Linear in the collection size.
func (a *Actions) GetTodoBySlug(ctx context.Context, s string) model.Result[model.Todo] {
	todos, err := a.todos.ListTodos(ctx, 0, 0)
	if err != nil {
		a.logger.Error("slug lookup failed", "slug", s, "error", err)
		return model.Fail[model.Todo](errMessage(err, MsgFetchTodo))
	}

	for _, t := range todos {
		if slug.Generate(t.Title) != s {
			continue
		}
		now := a.timestamp()
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = now
		}
		return model.OK(t)
	}
	return model.Fail[model.Todo](MsgTodoNotFound)
}

// CreateTodo attempts the remote create, then returns a locally synthesized
// todo with a counter id and fresh timestamps. The id echoed by the backing
// API is discarded because it is never persisted.
func (a *Actions) CreateTodo(ctx context.Context, input model.TodoInput) model.Result[model.Todo] {
	if _, err := a.todos.CreateTodo(ctx, input); err != nil {
		if !a.policy.MaskWriteFailures {
			return model.Fail[model.Todo](errMessage(err, MsgCreateTodo))
		}
		a.logger.Warn("remote create failed, returning synthesized todo", "error", err)
	}

	now := a.timestamp()
	return model.OK(model.Todo{
		ID:        a.syntheticID(),
		Title:     input.Title,
		Completed: input.Completed,
		UserID:    input.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// UpdateTodo attempts the remote update, then returns the patch materialized
// as a complete todo. Missing fields take zero values, CreatedAt defaults to
// now and UpdatedAt is always refreshed.
func (a *Actions) UpdateTodo(ctx context.Context, id string, patch model.TodoPatch) model.Result[model.Todo] {
	if _, err := a.todos.UpdateTodo(ctx, id, patch); err != nil {
		if !a.policy.MaskWriteFailures {
			return model.Fail[model.Todo](errMessage(err, MsgUpdateTodo))
		}
		a.logger.Warn("remote update failed, returning synthesized todo", "id", id, "error", err)
	}

	now := a.timestamp()
	updated := patch.Apply(model.Todo{ID: id})
	if patch.CreatedAt == nil {
		updated.CreatedAt = now
	}
	updated.UpdatedAt = now
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		updated.UpdatedAt = updated.CreatedAt
	}
	return model.OK(updated)
}

// DeleteTodo attempts the remote delete and echoes id.
func (a *Actions) DeleteTodo(ctx context.Context, id string) model.Result[string] {
	if _, err := a.todos.DeleteTodo(ctx, id); err != nil {
		if !a.policy.MaskWriteFailures {
			return model.Fail[string](errMessage(err, MsgDeleteTodo))
		}
		a.logger.Warn("remote delete failed, reporting success", "id", id, "error", err)
	}
	return model.OK(id)
}
