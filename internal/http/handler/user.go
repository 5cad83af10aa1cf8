package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jaekwang-park/taskboard/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Routes mounts /users and /users/{id}.
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/users", h.handleList)
	r.Get("/users/{id}", h.handleGetByID)
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, users)
}

func (h *UserHandler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, user)
}
