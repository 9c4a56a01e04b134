// Package player содержит модель экрана воспроизведения для TUI
package player

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/player"
	"github.com/hazadus/go-playlist/internal/playlist"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/tui/tracklist"
	"github.com/hazadus/go-playlist/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff")).
			MarginBottom(1)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			MarginBottom(1)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)
)

// GoBackMsg отправляется для возврата к плейлисту
type GoBackMsg struct{}

// ProgressMsg содержит обновления прогресса воспроизведения
type ProgressMsg struct {
	Status player.Status
}

// PlaybackFinishedMsg отправляется при завершении воспроизведения
type PlaybackFinishedMsg struct{}

// PlaybackErrorMsg отправляется при ошибке воспроизведения
type PlaybackErrorMsg struct {
	Error error
}

// playbackStartedMsg отправляется после успешного запуска трека
type playbackStartedMsg struct{}

// Model представляет модель экрана воспроизведения
type Model struct {
	track       playlist.Track
	manager     *track.Manager
	player      *player.Player
	progressBar progress.Model
	status      player.Status
	isPlaying   bool
	notice      string
	error       error
	width       int
	height      int
	// stop закрывается при уходе с экрана и отпускает слушателей плеера
	stop chan struct{}
}

// NewModel создает модель экрана для трека с использованием общего плеера
func NewModel(t playlist.Track, manager *track.Manager, p *player.Player) *Model {
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	return &Model{
		track:       t,
		manager:     manager,
		player:      p,
		progressBar: prog,
		stop:        make(chan struct{}),
	}
}

// Init запускает воспроизведение
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.startPlayback(),
		m.listenForProgress(),
	)
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = min(60, msg.Width-10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			m.leave()
			return m, func() tea.Msg { return GoBackMsg{} }

		case " ":
			if m.error == nil {
				m.player.Pause()
				m.isPlaying = m.player.IsPlaying()
			}
			return m, nil

		case "n":
			return m, m.skip(m.manager.Next)

		case "p":
			return m, m.skip(m.manager.Prev)
		}

	case playbackStartedMsg:
		m.isPlaying = true
		m.error = nil
		return m, nil

	case ProgressMsg:
		m.status = msg.Status
		m.isPlaying = msg.Status.IsPlaying

		var percent float64
		if msg.Status.Total > 0 {
			percent = float64(msg.Status.Current) / float64(msg.Status.Total)
		}

		return m, tea.Batch(
			m.progressBar.SetPercent(percent),
			m.listenForProgress(),
		)

	case PlaybackFinishedMsg:
		// Трек доиграл, переходим к следующему
		m.isPlaying = false
		next, err := m.manager.Next()
		if err != nil {
			m.notice = tracklist.Describe(err)
			return m, m.listenForProgress()
		}
		return m, tea.Batch(m.switchTo(next), m.listenForProgress())

	case PlaybackErrorMsg:
		m.error = msg.Error
		m.isPlaying = false
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// leave останавливает воспроизведение и слушателей экрана
func (m *Model) leave() {
	m.player.Stop()
	select {
	case <-m.stop:
	default:
		close(m.stop)
	}
}

// skip сдвигает курсор плейлиста и запускает новый текущий трек
func (m *Model) skip(move func() (playlist.Track, error)) tea.Cmd {
	t, err := move()
	if err != nil {
		m.notice = tracklist.Describe(err)
		return nil
	}
	return m.switchTo(t)
}

func (m *Model) switchTo(t playlist.Track) tea.Cmd {
	m.track = t
	m.status = player.Status{}
	m.notice = ""
	m.error = nil
	return tea.Batch(m.startPlayback(), m.progressBar.SetPercent(0))
}

// View отображает модель
func (m *Model) View() string {
	if m.error != nil {
		return fmt.Sprintf(
			"%s\n\n%s\n\n%s",
			titleStyle.Render("❌ Ошибка воспроизведения"),
			errorStyle.Render(m.error.Error()),
			controlsStyle.Render("n/p: другой трек • q/esc: назад к плейлисту"),
		)
	}

	title := titleStyle.Render("🎵 Сейчас играет")

	trackInfo := trackInfoStyle.Render(fmt.Sprintf(
		"🎵 %s\n🎤 %s",
		m.track.Title,
		m.track.Artist,
	))

	statusIcon := "⏸️"
	if m.isPlaying {
		statusIcon = "▶️"
	}
	statusText := statusStyle.Render(fmt.Sprintf("%s %s", statusIcon, formatStatus(m.isPlaying, m.status)))

	timeText := fmt.Sprintf(
		"%s / %s",
		utils.FormatDuration(m.status.Current),
		utils.FormatDuration(m.status.Total),
	)

	notice := ""
	if m.notice != "" {
		notice = "\n" + noticeStyle.Render(m.notice)
	}

	controls := controlsStyle.Render(
		"Пробел: пауза/воспроизведение • n/p: следующий/предыдущий • q/esc: назад к плейлисту",
	)

	return fmt.Sprintf(
		"%s\n\n%s\n\n%s\n\n%s\n%s%s\n\n%s",
		title,
		trackInfo,
		statusText,
		m.progressBar.View(),
		timeText,
		notice,
		controls,
	)
}

// startPlayback запускает воспроизведение текущего трека модели
func (m *Model) startPlayback() tea.Cmd {
	t := m.track
	return func() tea.Msg {
		if err := m.player.Play(t); err != nil {
			return PlaybackErrorMsg{Error: err}
		}
		return playbackStartedMsg{}
	}
}

// listenForProgress слушает обновления прогресса от плеера
func (m *Model) listenForProgress() tea.Cmd {
	p, stop := m.player, m.stop
	return func() tea.Msg {
		select {
		case <-stop:
			return nil
		case status := <-p.Progress():
			return ProgressMsg{Status: status}
		case <-p.Done():
			return PlaybackFinishedMsg{}
		}
	}
}

func formatStatus(isPlaying bool, status player.Status) string {
	if !isPlaying {
		return "Пауза"
	}
	return status.StatusText()
}
