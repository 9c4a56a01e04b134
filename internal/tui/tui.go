// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/tui/app"
	"github.com/hazadus/go-playlist/internal/tui/form"
)

// App представляет основное TUI приложение
type App struct {
	manager  *track.Manager
	uploader form.Uploader
	logger   *log.Logger
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(manager *track.Manager, uploader form.Uploader, logger *log.Logger) *App {
	return &App{
		manager:  manager,
		uploader: uploader,
		logger:   logger,
	}
}

// Run запускает TUI приложение
func (tuiApp *App) Run() error {
	model := app.NewMainModel(tuiApp.manager, tuiApp.uploader, tuiApp.logger)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()

	// Закрываем плеер после завершения программы
	model.Close()

	return err
}
