package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit       key.Binding
	reload     key.Binding
	toggleHelp key.Binding
	moveLeft   key.Binding
	moveRight  key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	addTask    key.Binding
	openTask   key.Binding
	deleteTask key.Binding
	logout     key.Binding
	copyTask   key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		moveLeft:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		openTask:   key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "task details")),
		deleteTask: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		logout:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		copyTask:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy checklist")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.openTask, k.deleteTask, k.reload, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.openTask, k.deleteTask, k.copyTask, k.logout, k.reload, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.toggleHelp},
	}
}
