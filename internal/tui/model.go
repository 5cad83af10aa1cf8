// Package tui is the terminal front end of the task board.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/syncer"
	"github.com/jaekwang-park/taskboard/internal/view"
)

type state int

const (
	stateBrowse state = iota
	stateSearch
	stateForm
	stateConfirmDelete
	stateDetail
)

type Model struct {
	ctx     context.Context
	sync    *syncer.Syncer
	logger  *slog.Logger
	keys    keyMap
	help    help.Model
	search  textinput.Model
	form    form
	visible *atomic.Bool

	state    state
	todos    []model.Todo
	users    []model.User
	filter   view.Filter
	assignee int // 0 is every assignee, otherwise users[assignee-1]
	page     int
	pageSize int
	cursor   int
	deleteID string
	detail   detailView
	loading  bool
	busy     int
	banner   string
	width    int
	height   int
}

type Option func(*Model)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) { m.logger = logger }
}

// WithPageSize sets the client-side page size used outside infinite mode.
func WithPageSize(n int) Option {
	return func(m *Model) { m.pageSize = view.ClampPageSize(n) }
}

func New(ctx context.Context, s *syncer.Syncer, opts ...Option) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search titles..."
	search.CharLimit = 100

	visible := &atomic.Bool{}
	visible.Store(true)

	m := Model{
		ctx:      ctx,
		sync:     s,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		keys:     defaultKeys(),
		help:     help.New(),
		search:   search,
		visible:  visible,
		filter:   view.Filter{Status: view.StatusAll},
		page:     1,
		pageSize: view.DefaultPageSize,
		loading:  true,
		width:    100,
		height:   30,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Visible reports whether the terminal has focus. The background refresh
// loop polls it.
func (m Model) Visible() bool {
	return m.visible.Load()
}

func (m Model) Init() tea.Cmd {
	s, ctx := m.sync, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: s.Load(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.FocusMsg:
		m.visible.Store(true)
		return m, nil
	case tea.BlurMsg:
		m.visible.Store(false)
		return m, nil
	case todosMsg:
		m.todos = msg
		m.clamp()
		return m, nil
	case loadedMsg:
		m.loading = false
		m.users = m.sync.Users()
		m.todos = m.sync.Store().Todos()
		if msg.err != nil {
			m.logger.Warn("initial load failed", "error", msg.err)
		}
		m.clamp()
		return m, nil
	case closeDialogMsg:
		m.closeDialog(msg.dialog)
		return m, nil
	case reopenCreateMsg:
		m.form = createForm(m.users, msg.input)
		m.state = stateForm
		return m, m.form.title.Focus()
	case errorMsg:
		m.banner = string(msg)
		return m, nil
	case opDoneMsg:
		m.busy = max(m.busy-1, 0)
		if msg.err != nil {
			m.logger.Debug("mutation failed", "op", msg.op, "error", msg.err)
		}
		return m, nil
	case detailMsg:
		if m.state == stateDetail && msg.id == m.detail.id {
			m.detail.loading = false
			m.detail.res = msg.res
		}
		return m, nil
	case modeMsg:
		m.loading = false
		m.page, m.cursor = 1, 0
		m.todos = m.sync.Store().Todos()
		return m, nil
	case pageMsg:
		m.loading = false
		return m, nil
	case refreshMsg:
		if msg.err != nil {
			m.banner = "Refresh failed"
			m.logger.Warn("manual refresh failed", "error", msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		switch m.state {
		case stateSearch:
			return m.updateSearch(msg)
		case stateForm:
			return m.updateForm(msg)
		case stateConfirmDelete:
			return m.updateConfirm(msg)
		case stateDetail:
			return m.updateDetail(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.banner = ""
	rows := m.rows()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(rows)-1, 0))
	case key.Matches(msg, m.keys.PrevPage):
		if m.sync.Mode() == syncer.ModeAll && m.page > 1 {
			m.page--
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.NextPage):
		if m.sync.Mode() == syncer.ModeAll && m.page < m.totalPages() {
			m.page++
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.LoadMore):
		if m.loading || !m.sync.HasNextPage() {
			return m, nil
		}
		m.loading = true
		s, ctx := m.sync, m.ctx
		return m, func() tea.Msg { return pageMsg{err: s.LoadNextPage(ctx)} }
	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m.mutate("toggle", func(s *syncer.Syncer, ctx context.Context) error {
			_, err := s.Toggle(ctx, t.ID)
			return err
		})
	case key.Matches(msg, m.keys.Detail):
		t, ok := m.selected()
		if !ok || syncer.IsPlaceholder(t.ID) {
			return m, nil
		}
		m.detail = detailView{id: t.ID, title: t.Title, loading: true}
		m.state = stateDetail
		s, ctx, id := m.sync, m.ctx, t.ID
		return m, func() tea.Msg { return detailMsg{id: id, res: s.Detail(ctx, id)} }
	case key.Matches(msg, m.keys.Create):
		m.form = createForm(m.users, model.TodoInput{UserID: m.defaultUserID()})
		m.state = stateForm
		return m, m.form.title.Focus()
	case key.Matches(msg, m.keys.Edit):
		t, ok := m.selected()
		if !ok || syncer.IsPlaceholder(t.ID) {
			return m, nil
		}
		m.form = newForm(syncer.DialogEdit, m.users, t)
		m.state = stateForm
		return m, m.form.title.Focus()
	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selected()
		if !ok || syncer.IsPlaceholder(t.ID) {
			return m, nil
		}
		m.deleteID = t.ID
		m.state = stateConfirmDelete
	case key.Matches(msg, m.keys.Status):
		m.filter.Status = m.filter.Status.Next()
		m.page, m.cursor = 1, 0
	case key.Matches(msg, m.keys.Assignee):
		m.assignee = (m.assignee + 1) % (len(m.users) + 1)
		m.filter.Assignees = nil
		if m.assignee > 0 {
			m.filter.Assignees = []string{m.users[m.assignee-1].ID}
		}
		m.page, m.cursor = 1, 0
	case key.Matches(msg, m.keys.Search):
		m.state = stateSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Mode):
		next := syncer.ModeInfinite
		if m.sync.Mode() == syncer.ModeInfinite {
			next = syncer.ModeAll
		}
		m.loading = true
		s, ctx := m.sync, m.ctx
		return m, func() tea.Msg { return modeMsg{err: s.SetMode(ctx, next)} }
	case key.Matches(msg, m.keys.Refresh):
		s, ctx := m.sync, m.ctx
		return m, func() tea.Msg {
			changed, err := s.Refresh(ctx)
			return refreshMsg{changed: changed, err: err}
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.filter.Query = ""
		fallthrough
	case "enter":
		m.search.Blur()
		m.state = stateBrowse
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filter.Query = m.search.Value()
	m.page, m.cursor = 1, 0
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		return m, nil
	case "enter":
		in := m.form.input()
		if in.Title == "" {
			m.form.err = "Title cannot be empty"
			return m, nil
		}
		m.form.submitting = true
		if m.form.kind == syncer.DialogEdit {
			t := m.form.todo()
			return m.mutate("update", func(s *syncer.Syncer, ctx context.Context) error {
				_, err := s.Update(ctx, t)
				return err
			})
		}
		return m.mutate("create", func(s *syncer.Syncer, ctx context.Context) error {
			_, err := s.Create(ctx, in)
			return err
		})
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		id := m.deleteID
		return m.mutate("delete", func(s *syncer.Syncer, ctx context.Context) error {
			return s.Delete(ctx, id)
		})
	case "n", "esc":
		m.deleteID = ""
		m.state = stateBrowse
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Detail), msg.String() == "esc", msg.String() == "q":
		m.detail = detailView{}
		m.state = stateBrowse
	}
	return m, nil
}

// mutate runs fn off the event loop. The syncer closes the dialog through
// the notifier once the optimistic change is in the store.
func (m Model) mutate(op string, fn func(*syncer.Syncer, context.Context) error) (tea.Model, tea.Cmd) {
	m.busy++
	s, ctx := m.sync, m.ctx
	return m, func() tea.Msg {
		return opDoneMsg{op: op, err: fn(s, ctx)}
	}
}

func (m *Model) closeDialog(d syncer.Dialog) {
	switch {
	case m.state == stateForm && m.form.kind == d:
		m.form.title.Blur()
		m.state = stateBrowse
	case m.state == stateConfirmDelete && d == syncer.DialogDelete:
		m.deleteID = ""
		m.state = stateBrowse
	}
}

func (m Model) filtered() []model.Todo {
	return m.filter.Apply(m.todos)
}

// rows is what the table shows: one client-side page, or everything loaded
// so far in infinite mode.
func (m Model) rows() []model.Todo {
	todos := m.filtered()
	if m.sync.Mode() == syncer.ModeInfinite {
		return todos
	}
	return view.Page(todos, m.page, m.pageSize)
}

func (m Model) totalPages() int {
	return view.TotalPages(len(m.filtered()), m.pageSize)
}

func (m Model) selected() (model.Todo, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return model.Todo{}, false
	}
	return rows[m.cursor], true
}

func (m Model) defaultUserID() string {
	if m.assignee > 0 {
		return m.users[m.assignee-1].ID
	}
	if len(m.users) > 0 {
		return m.users[0].ID
	}
	return ""
}

func (m *Model) clamp() {
	if m.assignee > len(m.users) {
		m.assignee = 0
		m.filter.Assignees = nil
	}
	m.page = min(max(m.page, 1), m.totalPages())
	m.cursor = min(m.cursor, max(len(m.rows())-1, 0))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n")
	if m.state == stateSearch || m.filter.Query != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	if m.banner != "" {
		b.WriteString(errorStyle.Render("✖ " + m.banner))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.table())
	b.WriteString("\n")
	b.WriteString(m.footer())

	switch m.state {
	case stateForm:
		b.WriteString("\n")
		b.WriteString(m.form.view())
	case stateDetail:
		b.WriteString("\n")
		b.WriteString(m.detail.view())
	case stateConfirmDelete:
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(fmt.Sprintf("Delete %q? %s", m.titleOf(m.deleteID), helpStyle.Render("y/n"))))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) header() string {
	var done int
	for _, t := range m.todos {
		if t.Completed {
			done++
		}
	}

	mode := "pages"
	if m.sync.Mode() == syncer.ModeInfinite {
		mode = "infinite"
	}
	assignee := "everyone"
	if m.assignee > 0 {
		assignee = m.users[m.assignee-1].Name
	}

	line := fmt.Sprintf("%s   %s %d  %s %d  %s %d   %s",
		titleStyle.Render("Tasks"),
		successStyle.Render(markDone), done,
		pendingStyle.Render(markPending), len(m.todos)-done,
		accentStyle.Render("Total"), len(m.todos),
		mutedStyle.Render(fmt.Sprintf("[%s · %s · %s]", m.filter.Status, assignee, mode)),
	)
	if m.loading {
		line += mutedStyle.Render("  loading...")
	} else if m.busy > 0 {
		line += mutedStyle.Render("  saving...")
	}
	return line
}

func (m Model) table() string {
	rows := m.rows()
	if len(rows) == 0 {
		if m.loading {
			return mutedStyle.Render("Loading tasks...")
		}
		return mutedStyle.Render("No tasks match the current filters.")
	}

	titleWidth := max(m.width-32, 20)
	userWidth := 20
	cell := func(w int) lipgloss.Style { return lipgloss.NewStyle().Width(w).MaxWidth(w) }

	lines := []string{
		"    " + headerStyle.Render(cell(titleWidth).Render("Title")) + " " + headerStyle.Render(cell(userWidth).Render("Assignee")),
	}

	start, end := m.window(len(rows))
	for i := start; i < end; i++ {
		t := rows[i]
		mark := pendingStyle.Render(markPending)
		title := cell(titleWidth).Render(t.Title)
		if t.Completed {
			mark = successStyle.Render(markDone)
			title = doneStyle.Render(title)
		}
		if syncer.IsPlaceholder(t.ID) {
			title = mutedStyle.Render(title)
		}
		line := fmt.Sprintf("%s %s %s", mark, title, cell(userWidth).Render(view.UserName(m.users, t.UserID)))
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render(">") + " "
		}
		lines = append(lines, prefix+line)
	}
	return strings.Join(lines, "\n")
}

// window keeps the cursor on screen when there are more rows than fit.
func (m Model) window(n int) (int, int) {
	height := max(m.height-12, 5)
	if n <= height {
		return 0, n
	}
	start := min(max(m.cursor-height/2, 0), n-height)
	return start, start + height
}

func (m Model) footer() string {
	if m.sync.Mode() == syncer.ModeInfinite {
		switch {
		case m.loading:
			return mutedStyle.Render("Loading more...")
		case m.sync.HasNextPage():
			return helpStyle.Render(fmt.Sprintf("%d loaded · m to load more", len(m.todos)))
		default:
			return helpStyle.Render(fmt.Sprintf("%d loaded · end of list", len(m.todos)))
		}
	}

	total := m.totalPages()
	items := view.PaginationItems(m.page, total)
	parts := make([]string, 0, len(items))
	for _, p := range items {
		switch {
		case p == view.Ellipsis:
			parts = append(parts, mutedStyle.Render("…"))
		case p == m.page:
			parts = append(parts, selectedStyle.Render(strconv.Itoa(p)))
		default:
			parts = append(parts, strconv.Itoa(p))
		}
	}
	return fmt.Sprintf("Page %d of %d   %s", m.page, total, strings.Join(parts, " "))
}

func (m Model) titleOf(id string) string {
	for _, t := range m.todos {
		if t.ID == id {
			return t.Title
		}
	}
	return id
}
