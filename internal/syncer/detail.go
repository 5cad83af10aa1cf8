package syncer

import (
	"context"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// Detail is a todo as the server has it, together with its assignee.
type Detail struct {
	Todo model.Todo
	User model.User
}

// Detail fetches the todo with id and then its user. It bypasses the store
// so the panel shows what the backing API holds. A failed fetch at either
// step ends the lookup with that step's message.
func (s *Syncer) Detail(ctx context.Context, id string) model.Result[Detail] {
	todo := s.actions.GetTodoByID(ctx, id)
	if !todo.OK() {
		s.logger.Debug("detail lookup failed", "id", id, "error", todo.Message())
		return model.Fail[Detail](todo.Message())
	}

	user := s.actions.GetUserByID(ctx, todo.Data.UserID)
	if !user.OK() {
		s.logger.Debug("detail user lookup failed", "id", id, "user_id", todo.Data.UserID, "error", user.Message())
		return model.Fail[Detail](user.Message())
	}
	return model.OK(Detail{Todo: todo.Data, User: user.Data})
}
