package main

import (
	"context"
	"fmt"

	"github.com/avoronov/go-chat-keeper/internal/app"
	"github.com/avoronov/go-chat-keeper/internal/config"
	httphandler "github.com/avoronov/go-chat-keeper/internal/handler/http"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/server"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("chat-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()
	container := app.NewContainer(cfg, log)
	defer func() {
		if closeErr := container.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("close storage")
		}
	}()

	services, err := container.Services(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handler := httphandler.NewHandler(services, cfg.App.Version, log)

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
