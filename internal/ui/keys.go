package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/TimelordUK/hexdd/internal/config"
)

// keyMap holds the bindings built from the user's config
type keyMap struct {
	Quit         key.Binding
	Left         key.Binding
	Right        key.Binding
	Up           key.Binding
	Down         key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Top          key.Binding
	Bottom       key.Binding
	Goto         key.Binding
	Edit         key.Binding
	Commit       key.Binding
	Cancel       key.Binding
	CycleBase    key.Binding
	WiderRows    key.Binding
	NarrowerRows key.Binding
	Undo         key.Binding

	// Nibble matches the hex digits typed while editing
	Nibble key.Binding
}

func binding(keys []string, desc string) key.Binding {
	label := ""
	if len(keys) > 0 {
		label = keys[0]
		if label == " " {
			label = "space"
		}
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

func newKeyMap(cfg *config.KeybindingConfig) keyMap {
	return keyMap{
		Quit:         binding(cfg.Quit, "quit"),
		Left:         binding(cfg.Left, "left"),
		Right:        binding(cfg.Right, "right"),
		Up:           binding(cfg.Up, "up"),
		Down:         binding(cfg.Down, "down"),
		PageUp:       binding(cfg.PageUp, "page up"),
		PageDown:     binding(cfg.PageDown, "page down"),
		Top:          binding(cfg.Top, "top"),
		Bottom:       binding(cfg.Bottom, "bottom"),
		Goto:         binding(cfg.Goto, "goto"),
		Edit:         binding(cfg.Edit, "edit"),
		Commit:       binding(cfg.Commit, "commit"),
		Cancel:       binding(cfg.Cancel, "cancel"),
		CycleBase:    binding(cfg.CycleBase, "base"),
		WiderRows:    binding(cfg.WiderRows, "wider"),
		NarrowerRows: binding(cfg.NarrowerRows, "narrower"),
		Undo:         binding(cfg.Undo, "undo"),
		Nibble: key.NewBinding(
			key.WithKeys(strings.Split("0123456789abcdefABCDEF", "")...),
			key.WithHelp("0-f", "type nibble"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Goto, k.CycleBase, k.WiderRows, k.NarrowerRows, k.Undo, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.PageUp, k.PageDown, k.Top, k.Bottom, k.Goto},
		{k.Edit, k.Commit, k.Cancel, k.Undo},
		{k.CycleBase, k.WiderRows, k.NarrowerRows, k.Quit},
	}
}

// editKeyMap is shown in the help line while a byte is being edited
type editKeyMap struct {
	keyMap
}

func (k editKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Nibble, k.Commit, k.Cancel}
}
