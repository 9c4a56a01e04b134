package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-playlist/internal/logging"
	"github.com/hazadus/go-playlist/internal/tui"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch interactive terminal user interface for managing and playing the playlist.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI()
		},
	}
}

func (app *Application) launchTUI() error {
	// Терминал занят интерфейсом, поэтому логи пишем в файл
	logFile, err := logging.OpenFile(app.Config.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	if err := app.setup(logFile); err != nil {
		return err
	}

	tuiApp := tui.NewApp(app.Manager, app.Uploader, app.Logger)
	if err := tuiApp.Run(); err != nil {
		return fmt.Errorf("ошибка TUI: %w", err)
	}
	return nil
}
