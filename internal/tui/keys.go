package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Section1   key.Binding
	Section2   key.Binding
	Section3   key.Binding
	NextTab    key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	ExpandAll  key.Binding
	Collapse   key.Binding
	Search     key.Binding
	Filter     key.Binding
	ColLeft    key.Binding
	ColRight   key.Binding
	Sort       key.Binding
	Export     key.Binding
	Help       key.Binding
	Quit       key.Binding
	EndSearch  key.Binding
	SubmitTerm key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Section1:   key.NewBinding(key.WithKeys("1", "alt+1"), key.WithHelp("1", "financieros")),
		Section2:   key.NewBinding(key.WithKeys("2", "alt+2"), key.WithHelp("2", "no financieros")),
		Section3:   key.NewBinding(key.WithKeys("3", "alt+3"), key.WithHelp("3", "comparativo")),
		NextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next section")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/collapse")),
		ExpandAll:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
		Collapse:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "collapse all")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Filter:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		ColLeft:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		ColRight:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort by column")),
		Export:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export csv")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		EndSearch:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close search")),
		SubmitTerm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search now")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Section1, k.Section2, k.Section3, k.Toggle, k.Search, k.Filter, k.Sort, k.Export, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Section1, k.Section2, k.Section3, k.NextTab},
		{k.Up, k.Down, k.Toggle, k.ExpandAll, k.Collapse},
		{k.Search, k.Filter, k.ColLeft, k.ColRight, k.Sort, k.Export},
		{k.Help, k.Quit},
	}
}
