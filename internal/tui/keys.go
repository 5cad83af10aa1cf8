package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	LoadMore key.Binding
	Toggle   key.Binding
	Detail   key.Binding
	Create   key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Status   key.Binding
	Assignee key.Binding
	Search   key.Binding
	Mode     key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevPage: key.NewBinding(key.WithKeys("left", "p"), key.WithHelp("←/p", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "next page")),
		LoadMore: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Detail:   key.NewBinding(key.WithKeys("v", "enter"), key.WithHelp("v/enter", "details")),
		Create:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Status:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "status filter")),
		Assignee: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "assignee filter")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Mode:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "pages/infinite")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Create, k.Edit, k.Delete, k.Toggle, k.Search, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage, k.LoadMore},
		{k.Detail, k.Create, k.Edit, k.Delete, k.Toggle},
		{k.Status, k.Assignee, k.Search},
		{k.Mode, k.Refresh, k.Help, k.Quit},
	}
}
