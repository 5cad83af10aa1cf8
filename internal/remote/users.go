package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jaekwang-park/taskboard/internal/model"
)

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users, ErrNetwork); err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user, ErrNotFound); err != nil {
		return model.User{}, err
	}
	return user, nil
}
