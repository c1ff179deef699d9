package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/service"
)

// TUI wraps the Bubble Tea program that drives the terminal chat client.
type TUI struct {
	services *service.Services
	logger   *logger.Logger
}

func New(services *service.Services, log *logger.Logger) (*TUI, error) {
	if services == nil {
		return nil, errors.New("tui: services are required")
	}
	return &TUI{services: services, logger: log}, nil
}

// Run blocks until the user quits. Closing the program with ctrl+c is a
// normal exit, not an error.
func (t *TUI) Run(ctx context.Context) error {
	model := newAppModel(ctx, t.services)
	finalModel, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if runErr != nil {
		return runErr
	}

	result, ok := finalModel.(appModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if result.err != nil && !errors.Is(result.err, ErrUserQuit) {
		return result.err
	}

	t.logger.Debug().Msg("tui closed")
	return nil
}
