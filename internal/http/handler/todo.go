package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/repository"
	"github.com/jaekwang-park/taskboard/internal/service"
)

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// Routes mounts /todos and /todos/{id}.
func (h *TodoHandler) Routes(r chi.Router) {
	r.Get("/todos", h.handleList)
	r.Post("/todos", h.handleCreate)
	r.Get("/todos/{id}", h.handleGetByID)
	r.Put("/todos/{id}", h.handleUpdate)
	r.Patch("/todos/{id}", h.handleUpdate)
	r.Delete("/todos/{id}", h.handleDelete)
}

func (h *TodoHandler) handleList(w http.ResponseWriter, r *http.Request) {
	params, ok := parseListParams(w, r)
	if !ok {
		return
	}

	todos, err := h.svc.List(r.Context(), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, todos)
}

func (h *TodoHandler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	todo, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input model.TodoInput
	if !decodeJSON(w, r, &input) {
		return
	}

	todo, err := h.svc.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.TodoPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	todo, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, struct{}{})
}

// parseListParams reads the JSONPlaceholder query parameters
// _page, _limit, userId and completed.
func parseListParams(w http.ResponseWriter, r *http.Request) (repository.TodoListParams, bool) {
	q := r.URL.Query()
	params := repository.TodoListParams{UserID: q.Get("userId")}

	for _, f := range []struct {
		key string
		dst *int
	}{{"_page", &params.Page}, {"_limit", &params.Limit}} {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			WriteError(w, http.StatusBadRequest, "INVALID_QUERY", f.key+" must be a positive integer")
			return repository.TodoListParams{}, false
		}
		*f.dst = n
	}

	if v := q.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "completed must be true or false")
			return repository.TodoListParams{}, false
		}
		params.Completed = &completed
	}

	return params, true
}
