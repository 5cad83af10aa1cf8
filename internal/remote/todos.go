package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// ListTodos fetches the whole collection, or a single offset page when both
// page and limit are positive.
func (c *Client) ListTodos(ctx context.Context, page, limit int) ([]model.Todo, error) {
	path := "/todos"
	if page > 0 && limit > 0 {
		q := url.Values{}
		q.Set("_page", strconv.Itoa(page))
		q.Set("_limit", strconv.Itoa(limit))
		path += "?" + q.Encode()
	}

	var todos []model.Todo
	if err := c.do(ctx, http.MethodGet, path, nil, &todos, ErrNetwork); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

func (c *Client) GetTodo(ctx context.Context, id string) (model.Todo, error) {
	var todo model.Todo
	if err := c.do(ctx, http.MethodGet, "/todos/"+url.PathEscape(id), nil, &todo, ErrNotFound); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

// CreateTodo posts a new todo. The id the server assigns is not durable and
// must not be used for later lookups.
func (c *Client) CreateTodo(ctx context.Context, input model.TodoInput) (model.Todo, error) {
	var todo model.Todo
	if err := c.do(ctx, http.MethodPost, "/todos", input, &todo, ErrNetwork); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
	var todo model.Todo
	if err := c.do(ctx, http.MethodPut, "/todos/"+url.PathEscape(id), patch, &todo, ErrNetwork); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

// DeleteTodo ignores the response body and echoes id back.
func (c *Client) DeleteTodo(ctx context.Context, id string) (string, error) {
	if err := c.do(ctx, http.MethodDelete, "/todos/"+url.PathEscape(id), nil, nil, ErrNetwork); err != nil {
		return "", err
	}
	return id, nil
}
