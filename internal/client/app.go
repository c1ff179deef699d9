package client

import (
	"context"
	"fmt"

	"github.com/avoronov/go-chat-keeper/internal/app"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/tui"
)

// App runs the terminal chat client against an in-process service stack.
// The client talks to the same store and provider code the server uses, so
// no server needs to be running.
type App struct {
	container *app.Container
	logger    *logger.Logger
}

func NewApp(cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	return &App{container: app.NewContainer(cfg, log), logger: log}, nil
}

func (a *App) Run() error {
	ctx := context.Background()

	services, err := a.container.Services(ctx)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer func() {
		if closeErr := a.container.Close(); closeErr != nil {
			a.logger.Error().Err(closeErr).Msg("close storage")
		}
	}()

	ui, err := tui.New(services, a.logger)
	if err != nil {
		return fmt.Errorf("create ui: %w", err)
	}

	return ui.Run(ctx)
}
