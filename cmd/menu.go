package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/musicpal/internal/shared"
	"github.com/desertthunder/musicpal/internal/tasks"
	"github.com/desertthunder/musicpal/internal/ui"
	"github.com/urfave/cli/v3"
)

const menuLogPath = "./tmp/musicpal-menu.log"

// Menu runs the interactive loop: pick an action, run it with live progress, return to the menu until Exit.
func (r *Runner) Menu(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(menuLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	status := ""
	for {
		menu := ui.NewMenu(status)
		if _, err := tea.NewProgram(menu, tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("error running menu: %w", err)
		}

		choice := menu.Choice()
		if choice.Action == ui.ActionExit {
			return nil
		}

		task := r.menuTask(choice)
		model := ui.NewTaskModel(ctx, choice.Action.String(), task)
		if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("error running %s: %w", choice.Action, err)
		}

		status = menuStatus(choice, model)
	}
}

// menuTask maps a menu choice to the task that carries it out.
func (r *Runner) menuTask(choice ui.Choice) ui.Task {
	var task ui.Task
	switch choice.Action {
	case ui.ActionGeneratePlaylist:
		task = r.generateTask(choice.Input, tasks.GenerateOpts{})
	case ui.ActionRecommend:
		task = r.recommendTask(choice.Input, 0)
	case ui.ActionQueue:
		task = r.queueTask(choice.Input)
	case ui.ActionSummarize:
		task = r.summarizeTask(choice.Input, r.summaryOpts())
	default:
		return func(context.Context, chan<- tasks.ProgressUpdate) (string, error) {
			return "", fmt.Errorf("%w: unknown action %d", shared.ErrInvalidArgument, choice.Action)
		}
	}

	return func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (string, error) {
		var out string
		err := r.withReauthQuiet(ctx, func() error {
			var err error
			out, err = task(ctx, progress)
			return err
		})
		return out, err
	}
}

// withReauthQuiet is [Runner.withReauth] for the menu, where failing over to a browser login is reported through
// the task result rather than printed over the TUI.
func (r *Runner) withReauthQuiet(ctx context.Context, fn func() error) error {
	output := r.output
	r.output = io.Discard
	defer func() { r.output = output }()
	return r.withReauth(ctx, fn)
}

func menuStatus(choice ui.Choice, model *ui.TaskModel) string {
	if _, err := model.Result(); err != nil {
		return fmt.Sprintf("✗ %s failed: %v", choice.Action, err)
	}
	return fmt.Sprintf("✓ %s finished", choice.Action)
}

