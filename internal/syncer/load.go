package syncer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// Visibility reports whether the view is on screen. Background refresh is
// skipped while it returns false.
type Visibility interface {
	Visible() bool
}

type VisibilityFunc func() bool

func (f VisibilityFunc) Visible() bool { return f() }

// AlwaysVisible never pauses background refresh.
var AlwaysVisible Visibility = VisibilityFunc(func() bool { return true })

// Load fetches todos and users in parallel. Todos are written to the store
// only when it is empty, so a remount does not clobber optimistic state.
func (s *Syncer) Load(ctx context.Context) error {
	var (
		todos model.Result[[]model.Todo]
		users model.Result[[]model.User]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		todos = s.fetchFirst(gctx)
		return nil
	})
	g.Go(func() error {
		users = s.actions.GetUsers(gctx)
		return nil
	})
	_ = g.Wait()

	var errs []error
	if users.OK() {
		s.mu.Lock()
		s.users = users.Data
		s.mu.Unlock()
	} else {
		errs = append(errs, fmt.Errorf("load users: %w", users.Err()))
		s.notify().Error(users.Message())
	}

	if todos.OK() {
		if s.store.Len() == 0 {
			s.store.SetInitialTodos(todos.Data)
		} else {
			s.logger.Debug("store not empty, keeping local todos", "local", s.store.Len())
		}
	} else {
		errs = append(errs, fmt.Errorf("load todos: %w", todos.Err()))
		s.notify().Error(todos.Message())
	}

	err := errors.Join(errs...)
	if err != nil {
		s.logger.Warn("initial load incomplete", "error", err)
	} else {
		s.logger.Info("initial load complete", "todos", len(todos.Data), "users", len(users.Data), "mode", s.Mode())
	}
	return err
}

// fetchFirst fetches what the current mode shows first: the whole
// collection, or page one.
func (s *Syncer) fetchFirst(ctx context.Context) model.Result[[]model.Todo] {
	if s.Mode() == ModeAll {
		return s.actions.GetTodos(ctx, 0, 0)
	}

	res := s.actions.GetTodos(ctx, 1, s.pageSize)
	if res.OK() {
		s.mu.Lock()
		s.pages = 1
		s.hasNext = len(res.Data) == s.pageSize
		s.mu.Unlock()
	}
	return res
}

// Refresh re-fetches what is currently shown and overwrites the store only
// when the result differs. It reports whether the store changed. The
// overwrite is skipped while an optimistic mutation is in flight or when one
// started during the fetch, so pending local changes are never lost; the
// next refresh picks up the server state.
func (s *Syncer) Refresh(ctx context.Context) (bool, error) {
	page, limit := 0, 0
	s.mu.Lock()
	if s.mode == ModeInfinite {
		page, limit = 1, max(s.pages, 1)*s.pageSize
	}
	started := s.started
	s.mu.Unlock()

	res := s.actions.GetTodos(ctx, page, limit)
	if !res.OK() {
		return false, fmt.Errorf("refresh todos: %w", res.Err())
	}

	s.mu.Lock()
	busy := len(s.pending) > 0 || s.started != started
	s.mu.Unlock()
	if busy {
		s.logger.Debug("refresh skipped, mutations in flight")
		return false, nil
	}

	if slices.EqualFunc(s.store.Todos(), res.Data, model.Todo.Equal) {
		return false, nil
	}
	s.store.SetInitialTodos(res.Data)
	return true, nil
}

// RunRefresh calls Refresh every interval while v reports the view visible,
// until ctx is done. Requests already sent are not aborted by the loop.
func (s *Syncer) RunRefresh(ctx context.Context, interval time.Duration, v Visibility) {
	if interval <= 0 {
		return
	}
	if v == nil {
		v = AlwaysVisible
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !v.Visible() {
				continue
			}
			changed, err := s.Refresh(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("background refresh failed", "error", err)
				continue
			}
			if changed {
				s.logger.Debug("background refresh updated store", "todos", s.store.Len())
			}
		}
	}
}

// HasNextPage reports whether another page may exist in infinite mode.
func (s *Syncer) HasNextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode == ModeInfinite && s.hasNext
}

// LoadNextPage fetches the next page in infinite mode and appends the todos
// that the store does not hold yet. A short page marks the end.
func (s *Syncer) LoadNextPage(ctx context.Context) error {
	s.mu.Lock()
	if s.mode != ModeInfinite || !s.hasNext {
		s.mu.Unlock()
		return nil
	}
	page := s.pages + 1
	s.mu.Unlock()

	res := s.actions.GetTodos(ctx, page, s.pageSize)
	if !res.OK() {
		s.notify().Error(res.Message())
		return fmt.Errorf("load page %d: %w", page, res.Err())
	}

	s.mu.Lock()
	s.pages = page
	s.hasNext = len(res.Data) == s.pageSize
	s.mu.Unlock()

	s.store.Reconcile(func(cur []model.Todo) []model.Todo {
		for _, t := range res.Data {
			if _, i := find(cur, t.ID); i < 0 {
				cur = append(cur, t)
			}
		}
		return cur
	})
	return nil
}

// SetMode switches paging mode and reloads the store from scratch.
func (s *Syncer) SetMode(ctx context.Context, m Mode) error {
	s.mu.Lock()
	s.mode = m
	s.pages = 0
	s.hasNext = true
	s.mu.Unlock()

	res := s.fetchFirst(ctx)
	if !res.OK() {
		s.notify().Error(res.Message())
		return fmt.Errorf("switch mode: %w", res.Err())
	}
	s.store.SetInitialTodos(res.Data)
	return nil
}
