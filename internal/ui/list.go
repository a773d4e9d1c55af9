package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

var _ list.Item = menuItem{}

// menuItem wraps an [Action] to implement [list.Item].
type menuItem struct {
	action Action
}

func (i menuItem) FilterValue() string { return i.action.String() }
func (i menuItem) Title() string       { return i.action.String() }
func (i menuItem) Description() string { return i.action.Description() }

func menuItems() []list.Item {
	actions := Actions()
	items := make([]list.Item, len(actions))
	for i, a := range actions {
		items[i] = menuItem{action: a}
	}
	return items
}
