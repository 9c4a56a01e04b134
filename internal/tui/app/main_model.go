// Package app содержит основную логику TUI приложения
package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/hazadus/go-playlist/internal/player"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/tui/form"
	tuiPlayer "github.com/hazadus/go-playlist/internal/tui/player"
	"github.com/hazadus/go-playlist/internal/tui/tracklist"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// PlaylistScreen - экран плейлиста
	PlaylistScreen ScreenType = iota
	// PlayerScreen - экран воспроизведения
	PlayerScreen
	// FormScreen - экран добавления или удаления трека
	FormScreen
)

// MainModel представляет главную модель TUI
type MainModel struct {
	manager        *track.Manager
	uploader       form.Uploader
	currentScreen  ScreenType
	tracklistModel *tracklist.Model
	playerModel    *tuiPlayer.Model
	formModel      *form.Model
	globalPlayer   *player.Player // Глобальный плеер для переиспользования
	width          int
	height         int
}

// NewMainModel создает новую главную модель
func NewMainModel(manager *track.Manager, uploader form.Uploader, logger *log.Logger) *MainModel {
	return &MainModel{
		manager:        manager,
		uploader:       uploader,
		currentScreen:  PlaylistScreen,
		tracklistModel: tracklist.NewModel(manager),
		globalPlayer:   player.NewPlayer(logger),
	}
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	return m.tracklistModel.Init()
}

// resize передает последний известный размер окна новому экрану
func (m *MainModel) resize() tea.Cmd {
	if m.width == 0 && m.height == 0 {
		return nil
	}
	size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
	return func() tea.Msg { return size }
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Глобальные горячие клавиши
		if msg.String() == "ctrl+c" {
			m.globalPlayer.Stop()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tracklist.PlayRequestedMsg:
		m.currentScreen = PlayerScreen
		m.playerModel = tuiPlayer.NewModel(msg.Track, m.manager, m.globalPlayer)
		return m, tea.Batch(m.playerModel.Init(), m.resize())

	case tracklist.AddRequestedMsg:
		m.currentScreen = FormScreen
		m.formModel = form.NewAddModel(m.manager, m.uploader)
		return m, tea.Batch(m.formModel.Init(), m.resize())

	case tracklist.DeleteRequestedMsg:
		m.currentScreen = FormScreen
		m.formModel = form.NewDeleteModel(m.manager, m.uploader, msg.Title)
		return m, tea.Batch(m.formModel.Init(), m.resize())

	case tuiPlayer.GoBackMsg:
		m.currentScreen = PlaylistScreen
		m.playerModel = nil
		// Экран воспроизведения мог сдвинуть курсор
		m.tracklistModel.RefreshData()
		return m, nil

	case form.GoBackMsg:
		m.currentScreen = PlaylistScreen
		m.formModel = nil
		return m, nil

	case form.DoneMsg:
		m.currentScreen = PlaylistScreen
		m.formModel = nil
		m.tracklistModel.RefreshData()
		m.tracklistModel.SetStatus(msg.Text, false)
		return m, nil
	}

	// Передаем сообщение активной модели
	var cmd tea.Cmd
	switch m.currentScreen {
	case PlaylistScreen:
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)

	case PlayerScreen:
		if m.playerModel != nil {
			var updated tea.Model
			updated, cmd = m.playerModel.Update(msg)
			if playerModel, ok := updated.(*tuiPlayer.Model); ok {
				m.playerModel = playerModel
			}
		}

	case FormScreen:
		if m.formModel != nil {
			m.formModel, cmd = m.formModel.Update(msg)
		}
	}

	return m, cmd
}

// View отображает интерфейс
func (m *MainModel) View() string {
	switch m.currentScreen {
	case PlaylistScreen:
		return m.tracklistModel.View()

	case PlayerScreen:
		if m.playerModel != nil {
			return m.playerModel.View()
		}
		return "Ошибка: модель плеера не инициализирована"

	case FormScreen:
		if m.formModel != nil {
			return m.formModel.View()
		}
		return "Ошибка: модель формы не инициализирована"

	default:
		return "Неизвестный экран"
	}
}

// Close закрывает ресурсы главной модели
func (m *MainModel) Close() {
	if m.globalPlayer != nil {
		m.globalPlayer.Close()
	}
}
