package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/syncer"
)

// todosMsg carries the store contents after a change.
type todosMsg []model.Todo

type loadedMsg struct{ err error }

type closeDialogMsg struct{ dialog syncer.Dialog }

type reopenCreateMsg struct{ input model.TodoInput }

type errorMsg string

// opDoneMsg ends a mutation started from the UI. Failures have already
// been reported through the notifier.
type opDoneMsg struct {
	op  string
	err error
}

type detailMsg struct {
	id  string
	res model.Result[syncer.Detail]
}

type modeMsg struct{ err error }

type pageMsg struct{ err error }

type refreshMsg struct {
	changed bool
	err     error
}

// notifier forwards syncer side effects into the program's event loop.
type notifier struct {
	send func(tea.Msg)
}

func (n notifier) CloseDialog(d syncer.Dialog) {
	n.send(closeDialogMsg{dialog: d})
}

func (n notifier) ReopenCreate(input model.TodoInput) {
	n.send(reopenCreateMsg{input: input})
}

func (n notifier) Error(msg string) {
	n.send(errorMsg(msg))
}
