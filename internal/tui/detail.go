package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/syncer"
)

// detailView is the read-only panel for one todo and its assignee, loaded
// from the API rather than the store.
type detailView struct {
	id      string
	title   string
	loading bool
	res     model.Result[syncer.Detail]
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}

func (d detailView) view() string {
	footer := helpStyle.Render("esc back")

	if d.loading {
		return panelStyle.Render(strings.Join([]string{
			titleStyle.Render(d.title),
			mutedStyle.Render("Loading details..."),
			footer,
		}, "\n"))
	}
	if !d.res.OK() {
		return panelStyle.Render(strings.Join([]string{
			errorStyle.Render("Error"),
			d.res.Message(),
			footer,
		}, "\n"))
	}

	t, u := d.res.Data.Todo, d.res.Data.User
	status := pendingStyle.Render("Pending")
	if t.Completed {
		status = successStyle.Render("Completed")
	}
	row := func(label, value string) string {
		return fmt.Sprintf("%s %s", mutedStyle.Render(fmt.Sprintf("%-12s", label)), value)
	}

	lines := []string{
		titleStyle.Render(t.Title) + "  " + status,
		mutedStyle.Render("Task #" + t.ID),
		"",
		row("Created", formatTime(t.CreatedAt)),
		row("Updated", formatTime(t.UpdatedAt)),
		"",
		accentStyle.Render("Assigned to"),
		row("Name", u.Name),
		row("Email", u.Email),
		row("Phone", u.Phone),
		row("Company", u.Company.Name),
		"",
		footer,
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
