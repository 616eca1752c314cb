package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"thingstodo/internal/client"
	"thingstodo/internal/tui"
	"thingstodo/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	// The terminal belongs to the UI; logs go to a file when asked for.
	logger := slog.New(slog.DiscardHandler)

	if path := os.Getenv("TODO_LOG_FILE"); path != "" {
		f, err := tea.LogToFile(path, "todo")
		if err != nil {
			return err
		}
		defer f.Close()

		logger = slog.New(slog.NewTextHandler(f, nil))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := client.NewAPIClient(cfg.APIURL, 0)
	controller := client.NewController(api, logger)

	p := tea.NewProgram(tui.New(ctx, controller), tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
