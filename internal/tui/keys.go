package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Draw      key.Binding
	Edit      key.Binding
	Kind      key.Binding
	AddVertex key.Binding
	DelVertex key.Binding
	Delete    key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Fit       key.Binding
	Rotate    key.Binding
	Objects   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Draw:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "draw")),
		Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Kind:      key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "kind")),
		AddVertex: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "add vertex")),
		DelVertex: key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "remove vertex")),
		Delete:    key.NewBinding(key.WithKeys("x", "delete", "backspace"), key.WithHelp("x", "delete")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑↓←→", "pan")),
		Down:      key.NewBinding(key.WithKeys("down")),
		Left:      key.NewBinding(key.WithKeys("left")),
		Right:     key.NewBinding(key.WithKeys("right")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_")),
		Fit:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit")),
		Rotate:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rotate")),
		Objects:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "objects")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Draw, k.Edit, k.Kind, k.Delete, k.Up, k.ZoomIn, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Draw, k.Edit, k.Kind},
		{k.AddVertex, k.DelVertex, k.Delete},
		{k.Up, k.ZoomIn, k.Fit, k.Rotate},
		{k.Objects, k.Help, k.Quit},
	}
}
