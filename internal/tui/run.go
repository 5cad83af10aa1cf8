package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/syncer"
)

// Run starts the program over s and blocks until the user quits or ctx is
// cancelled. A positive refresh interval enables background refresh while
// the terminal has focus.
func Run(ctx context.Context, s *syncer.Syncer, refresh time.Duration, opts ...Option) error {
	m := New(ctx, s, opts...)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithReportFocus())

	s.SetNotifier(notifier{send: p.Send})
	defer s.SetNotifier(nil)

	unsubscribe := s.Store().Subscribe(func(todos []model.Todo) {
		p.Send(todosMsg(todos))
	})
	defer unsubscribe()

	refreshCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.RunRefresh(refreshCtx, refresh, syncer.VisibilityFunc(m.Visible))

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
