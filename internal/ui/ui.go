package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Action is a menu option.
type Action int

const (
	ActionGeneratePlaylist Action = iota
	ActionRecommend
	ActionQueue
	ActionSummarize
	ActionExit
)

// Actions returns the menu options in display order.
func Actions() []Action {
	return []Action{ActionGeneratePlaylist, ActionRecommend, ActionQueue, ActionSummarize, ActionExit}
}

func (a Action) String() string {
	switch a {
	case ActionGeneratePlaylist:
		return "Generate Playlist"
	case ActionRecommend:
		return "Recommend Songs"
	case ActionQueue:
		return "Add to Queue"
	case ActionSummarize:
		return "Summarize Playlists"
	case ActionExit:
		return "Exit"
	default:
		return ""
	}
}

func (a Action) Description() string {
	switch a {
	case ActionGeneratePlaylist:
		return "Build a playlist from a mood"
	case ActionRecommend:
		return "Songs like a track or what's playing now"
	case ActionQueue:
		return "Queue a song on the active device"
	case ActionSummarize:
		return "Genre breakdown of a user's playlists"
	case ActionExit:
		return "Quit musicpal"
	default:
		return ""
	}
}

// prompt returns the input prompt for a, and whether an empty answer is accepted.
// An empty prompt means the action needs no input.
func (a Action) prompt() (string, bool) {
	switch a {
	case ActionGeneratePlaylist:
		return "Mood", false
	case ActionRecommend:
		return "Song ID (empty for the current track)", true
	case ActionQueue:
		return "Song ID", false
	case ActionSummarize:
		return "Spotify username", false
	default:
		return "", true
	}
}

// Choice is what the user picked from the [Menu].
type Choice struct {
	Action Action
	Input  string
}

// ViewState represents the current view of the [Menu].
type ViewState int

const (
	MenuView ViewState = iota
	InputView
)

// Menu is the interactive main menu. Run it with [tea.NewProgram] and read [Menu.Choice] afterwards.
type Menu struct {
	view     ViewState
	list     list.Model
	input    textinput.Model
	selected Action
	choice   Choice
	status   string
	hint     string
	help     help.Model
	keys     keyMap
}

// NewMenu builds the menu. status, when set, is shown above the options (usually the last action's outcome).
func NewMenu(status string) *Menu {
	l := list.New(menuItems(), list.NewDefaultDelegate(), 60, 18)
	l.Title = "musicpal"
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)

	in := textinput.New()
	in.CharLimit = 200
	in.Width = 50

	// Exit is the answer when the program is interrupted.
	return &Menu{
		view:   MenuView,
		list:   l,
		input:  in,
		status: status,
		choice: Choice{Action: ActionExit},
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Choice returns the selection made before the program quit.
func (m *Menu) Choice() Choice {
	return m.choice
}

// ViewState returns the active view.
func (m *Menu) ViewState() ViewState {
	return m.view
}

func (m *Menu) Init() tea.Cmd {
	return nil
}

func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	case tea.KeyMsg:
		if m.view == InputView {
			return m.handleInputKeys(msg)
		}
		return m.handleMenuKeys(msg)
	}

	return m.updateActive(msg)
}

func (m *Menu) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.choice = Choice{Action: ActionExit}
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		item, ok := m.list.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}
		return m.choose(item.action)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Menu) choose(a Action) (tea.Model, tea.Cmd) {
	label, _ := a.prompt()
	if label == "" {
		m.choice = Choice{Action: a}
		return m, tea.Quit
	}

	m.selected = a
	m.view = InputView
	m.hint = ""
	m.input.Reset()
	m.input.Placeholder = label
	return m, m.input.Focus()
}

func (m *Menu) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.choice = Choice{Action: ActionExit}
		return m, tea.Quit
	case tea.KeyEsc:
		m.view = MenuView
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		label, optional := m.selected.prompt()
		if value == "" && !optional {
			m.hint = fmt.Sprintf("%s is required", label)
			return m, nil
		}
		m.choice = Choice{Action: m.selected, Input: value}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Menu) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MenuView:
		m.list, cmd = m.list.Update(msg)
	case InputView:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Menu) View() string {
	var b strings.Builder
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n\n")
	}

	switch m.view {
	case InputView:
		b.WriteString(styles.title.Render(m.selected.String()))
		b.WriteString("\n")
		b.WriteString(styles.prompt.Render("> "))
		b.WriteString(m.input.View())
		if m.hint != "" {
			b.WriteString("\n")
			b.WriteString(styles.warn.Render(m.hint))
		}
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back}))
	default:
		b.WriteString(m.list.View())
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit}))
	}
	return b.String()
}
