package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plcopy/internal/formatter"
	"github.com/desertthunder/plcopy/internal/shared"
	"github.com/desertthunder/plcopy/internal/tasks"
	"github.com/desertthunder/plcopy/internal/ui"
)

const tuiLogPath = "./tmp/plcopy-tui.log"

// useFileLogger redirects logs to a file so they do not interfere with TUI rendering.
func (r *Runner) useFileLogger() error {
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.logger = fileLogger
	return nil
}

// runTUI launches the interactive picker and copy view, then prints the copy report.
func (r *Runner) runTUI(ctx context.Context, browser ui.Browser, engine *tasks.CopyEngine, opts ui.Options) error {
	model := ui.NewModel(ctx, browser, engine, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	result, err := model.Outcome()
	if result == nil && err == nil {
		return nil
	}
	if werr := r.writeBytes(formatter.CopyReport(result, err)); werr != nil {
		return werr
	}
	return err
}
