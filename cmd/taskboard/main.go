package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaekwang-park/taskboard/internal/action"
	"github.com/jaekwang-park/taskboard/internal/config"
	"github.com/jaekwang-park/taskboard/internal/remote"
	"github.com/jaekwang-park/taskboard/internal/store"
	"github.com/jaekwang-park/taskboard/internal/syncer"
	"github.com/jaekwang-park/taskboard/internal/tui"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "taskboard:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadFile(os.Getenv("TASKBOARD_CONFIG"))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"api_url", cfg.Client.APIURL,
		"infinite", cfg.Client.Infinite,
		"mask_write_failures", cfg.Client.MaskWriteFailures,
		"rollback", cfg.Client.Rollback,
	)

	client := remote.New(cfg.Client.APIURL,
		remote.WithTimeout(cfg.Client.Timeout),
		remote.WithLogger(logger),
	)
	actions := action.New(client, client,
		action.WithPolicy(action.Policy{MaskWriteFailures: cfg.Client.MaskWriteFailures}),
		action.WithLogger(logger),
	)

	mode, pageSize := syncer.ModeAll, cfg.Client.PageSize
	if cfg.Client.Infinite {
		mode, pageSize = syncer.ModeInfinite, cfg.Client.InfinitePageSize
	}
	rollback := syncer.RollbackSnapshot
	if cfg.Client.Rollback == "inverse" {
		rollback = syncer.RollbackInverse
	}
	s := syncer.New(store.New(), actions,
		syncer.WithMode(mode),
		syncer.WithPageSize(pageSize),
		syncer.WithRollback(rollback),
		syncer.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = tui.Run(ctx, s, cfg.Client.RefreshInterval,
		tui.WithLogger(logger),
		tui.WithPageSize(cfg.Client.PageSize),
	)
	logger.Info("taskboard exited", "error", err)
	return err
}
