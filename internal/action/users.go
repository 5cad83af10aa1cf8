package action

import (
	"context"

	"github.com/jaekwang-park/taskboard/internal/model"
)

func (a *Actions) GetUsers(ctx context.Context) model.Result[[]model.User] {
	users, err := a.users.ListUsers(ctx)
	if err != nil {
		return model.Fail[[]model.User](errMessage(err, MsgFetchUsers))
	}
	return model.OK(users)
}

func (a *Actions) GetUserByID(ctx context.Context, id string) model.Result[model.User] {
	user, err := a.users.GetUser(ctx, id)
	if err != nil {
		return model.Fail[model.User](errMessage(err, MsgFetchUser))
	}
	return model.OK(user)
}
