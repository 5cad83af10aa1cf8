package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/syncer"
	"github.com/jaekwang-park/taskboard/internal/view"
)

const (
	fieldTitle = iota
	fieldAssignee
	fieldCompleted
	fieldCount
)

// form backs the create and edit dialogs.
type form struct {
	kind       syncer.Dialog
	base       model.Todo
	title      textinput.Model
	users      []model.User
	user       int // index into users, -1 keeps base.UserID
	completed  bool
	focus      int
	err        string
	submitting bool
}

func newForm(kind syncer.Dialog, users []model.User, base model.Todo) form {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Task title..."
	ti.CharLimit = 200
	ti.SetValue(base.Title)
	ti.CursorEnd()

	f := form{
		kind:      kind,
		base:      base,
		title:     ti,
		users:     users,
		user:      -1,
		completed: base.Completed,
	}
	for i, u := range users {
		if u.ID == base.UserID {
			f.user = i
		}
	}
	return f
}

func createForm(users []model.User, input model.TodoInput) form {
	return newForm(syncer.DialogCreate, users, model.Todo{
		Title:     input.Title,
		Completed: input.Completed,
		UserID:    input.UserID,
	})
}

func (f form) userID() string {
	if f.user < 0 || f.user >= len(f.users) {
		return f.base.UserID
	}
	return f.users[f.user].ID
}

func (f form) input() model.TodoInput {
	return model.TodoInput{
		Title:     strings.TrimSpace(f.title.Value()),
		Completed: f.completed,
		UserID:    f.userID(),
	}
}

// todo merges the form fields into the todo being edited.
func (f form) todo() model.Todo {
	t := f.base
	in := f.input()
	t.Title = in.Title
	t.Completed = in.Completed
	t.UserID = in.UserID
	return t
}

func (f *form) focusField(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	if f.focus == fieldTitle {
		return f.title.Focus()
	}
	f.title.Blur()
	return nil
}

// update handles keys that edit the form. Submit and cancel are handled by
// the model.
func (f form) update(msg tea.KeyMsg) (form, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return f, f.focusField(f.focus + 1)
	case "shift+tab", "up":
		return f, f.focusField(f.focus - 1)
	}

	switch f.focus {
	case fieldAssignee:
		if len(f.users) == 0 {
			return f, nil
		}
		switch msg.String() {
		case "left", "h":
			if f.user < 0 {
				f.user = len(f.users)
			}
			f.user = (f.user - 1 + len(f.users)) % len(f.users)
		case "right", "l", " ":
			f.user = (f.user + 1) % len(f.users)
		}
		return f, nil
	case fieldCompleted:
		if msg.String() == " " || msg.String() == "x" {
			f.completed = !f.completed
		}
		return f, nil
	}

	var cmd tea.Cmd
	f.title, cmd = f.title.Update(msg)
	f.err = ""
	return f, cmd
}

func (f form) view() string {
	heading := "New task"
	if f.kind == syncer.DialogEdit {
		heading = "Edit task"
	}
	if f.submitting {
		heading += mutedStyle.Render("  saving...")
	}
	if f.err != "" {
		heading += "  " + errorStyle.Render(f.err)
	}

	label := func(i int, s string) string {
		if f.focus == i {
			return accentStyle.Render(s)
		}
		return mutedStyle.Render(s)
	}

	assignee := view.UserName(f.users, f.userID())
	done := "[ ]"
	if f.completed {
		done = "[" + markDone + "]"
	}

	lines := []string{
		titleStyle.Render(heading),
		label(fieldTitle, "Title"),
		f.title.View(),
		fmt.Sprintf("%s  ‹ %s ›", label(fieldAssignee, "Assignee"), assignee),
		fmt.Sprintf("%s %s", label(fieldCompleted, "Completed"), done),
		helpStyle.Render("tab next field · enter save · esc cancel"),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
