package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/musicpal/internal/tasks"
)

// Task is a long-running action reporting progress on the given channel. It must not close the channel.
type Task func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (string, error)

// TaskModel runs a [Task] in the background, rendering its progress and then its output.
type TaskModel struct {
	ctx          context.Context
	title        string
	task         Task
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	bar          progress.Model
	output       string
	err          error
	done         bool
	help         help.Model
	keys         keyMap
}

// NewTaskModel creates a [TaskModel]; the task starts in Init.
func NewTaskModel(ctx context.Context, title string, task Task) *TaskModel {
	return &TaskModel{
		ctx:   ctx,
		title: title,
		task:  task,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:  help.New(),
		keys:  newKeyMap(),
	}
}

// Result returns the task output and error once finished.
func (m *TaskModel) Result() (string, error) {
	return m.output, m.err
}

// Done reports whether the task has finished.
func (m *TaskModel) Done() bool {
	return m.done
}

func (m *TaskModel) Init() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate)

	go func() {
		output, err := m.task(m.ctx, m.progressChan)
		m.output = output
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *TaskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.done && (key.Matches(msg, m.keys.enter) || key.Matches(msg, m.keys.back) || key.Matches(msg, m.keys.quit)) {
			return m, tea.Quit
		}
		return m, nil
	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.progress = msg.data.(tasks.ProgressUpdate)
			return m, m.waitForProgress()
		case MsgTaskComplete:
			r := msg.data.(taskResult)
			m.output = r.output
			m.err = r.err
			m.done = true
			m.progressChan = nil
			return m, nil
		}
	}
	return m, nil
}

func (m *TaskModel) waitForProgress() tea.Cmd {
	ch := m.progressChan
	return func() tea.Msg {
		if ch == nil {
			return taskCompleteMsg(m.output, m.err)
		}

		update, ok := <-ch
		if !ok {
			return taskCompleteMsg(m.output, m.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *TaskModel) View() string {
	title := styles.title.Render(m.title)
	backHelp := m.help.ShortHelpView([]key.Binding{key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "back to menu"))})

	if m.done {
		if m.err != nil {
			return fmt.Sprintf("%s\n%s\n\n%s", title, styles.err.Render(fmt.Sprintf("Error: %v", m.err)), backHelp)
		}
		return fmt.Sprintf("%s\n%s\n\n%s", title, m.output, backHelp)
	}

	return fmt.Sprintf("%s\n%s\n%s", title, m.bar.ViewAs(fraction(m.progress)), m.progress.Message)
}
