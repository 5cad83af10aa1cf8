package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jaekwang-park/taskboard/internal/config"
	todohttp "github.com/jaekwang-park/taskboard/internal/http"
	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/repository"
	"github.com/jaekwang-park/taskboard/internal/service"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

type backend struct {
	todos  repository.TodoRepository
	users  repository.UserRepository
	source string
	db     *sql.DB
}

func (b backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// openBackend picks the fixture source: Postgres when a DSN is configured,
// then a seed file, then the built-in fixtures.
func openBackend(ctx context.Context, cfg config.MockAPIConfig) (backend, error) {
	if dsn := cfg.PostgresDSN(); dsn != "" {
		db, err := repository.NewDB(ctx, dsn)
		if err != nil {
			return backend{}, err
		}
		return backend{
			todos:  repository.NewPostgresTodo(db),
			users:  repository.NewPostgresUser(db),
			source: "postgres",
			db:     db,
		}, nil
	}

	fixtures, source := repository.DefaultFixtures(), "default"
	if cfg.SeedFile != "" {
		var err error
		if fixtures, err = repository.LoadSeedFile(cfg.SeedFile); err != nil {
			return backend{}, fmt.Errorf("failed to load seed file: %w", err)
		}
		source = "seed"
	}
	return backend{
		todos:  repository.NewMemoryTodo(fixtures.Todos),
		users:  repository.NewMemoryUser(fixtures.Users),
		source: source,
	}, nil
}

func run(ctx context.Context) error {
	cfg, err := config.LoadFile(os.Getenv("TASKBOARD_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.MockAPI.ServerPort,
		"latency", cfg.MockAPI.Latency,
		"fail_rate", cfg.MockAPI.FailRate,
		"log_level", cfg.LogLevel,
	)

	b, err := openBackend(ctx, cfg.MockAPI)
	if err != nil {
		return err
	}
	defer b.Close()
	logger.Info("fixtures ready", "source", b.source)

	router := todohttp.NewRouter(todohttp.RouterConfig{
		Logger:  logger,
		TodoSvc: service.NewTodoService(b.todos),
		UserSvc: service.NewUserService(b.users),
		Source:  b.source,
		Faults:  middleware.NewFaults(logger, cfg.MockAPI.Latency, cfg.MockAPI.FailRate),
	})
	srv := todohttp.NewServer(cfg.MockAPI.ServerPort, logger, router)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
