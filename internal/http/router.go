package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jaekwang-park/taskboard/internal/http/handler"
	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/service"
)

type RouterConfig struct {
	Logger  *slog.Logger
	TodoSvc *service.TodoService
	UserSvc *service.UserService
	// Source names the fixture source reported by /health.
	Source string
	// Faults is applied to the resource routes only. Nil disables it.
	Faults *middleware.Faults
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	// Health stays outside the fault group so health checks never see injected errors.
	r.Handle("/health", handler.NewHealthHandler(cfg.Source))

	r.Group(func(r chi.Router) {
		if cfg.Faults.Enabled() {
			r.Use(cfg.Faults.LatencyInjection)
			r.Use(cfg.Faults.RandomFailure)
		}
		handler.NewTodoHandler(cfg.TodoSvc).Routes(r)
		handler.NewUserHandler(cfg.UserSvc).Routes(r)
	})

	return r
}
