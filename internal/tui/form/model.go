// Package form содержит модель экрана добавления и удаления треков для TUI
package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/payload"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/tui/tracklist"
	"github.com/hazadus/go-playlist/internal/uploader"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(15)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
	busyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Margin(1, 0)
)

// Mode определяет назначение формы
type Mode int

const (
	// AddMode форма добавления трека
	AddMode Mode = iota
	// DeleteMode форма удаления трека по названию
	DeleteMode
)

// Uploader сохраняет аудиоданные треков. Реализуется uploader.Service
type Uploader interface {
	UploadFile(ctx context.Context, filePath string, progressCallback func(int64)) (payload.Handle, error)
	Link(rawURL string) (payload.Handle, error)
	Discard(ctx context.Context, h payload.Handle) error
}

// DoneMsg отправляется после успешного добавления или удаления
type DoneMsg struct {
	Text string
}

// GoBackMsg отправляется при отмене формы
type GoBackMsg struct{}

// failedMsg возвращается командой отправки при ошибке
type failedMsg struct {
	err string
}

// uploadProgressMsg сколько байт файла уже загружено
type uploadProgressMsg struct {
	bytes int64
}

type field struct {
	label string
	input textinput.Model
}

// Model представляет модель формы
type Model struct {
	mode       Mode
	manager    *track.Manager
	uploader   Uploader
	fields     []field
	focusIndex int
	err        string
	busy       bool
	uploaded   int64
	progress   <-chan int64
}

func newInput(placeholder, value string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.SetValue(value)
	input.PromptStyle = blurredStyle
	input.TextStyle = blurredStyle
	return input
}

// NewAddModel создает форму добавления трека
func NewAddModel(manager *track.Manager, uploader Uploader) *Model {
	m := &Model{
		mode:     AddMode,
		manager:  manager,
		uploader: uploader,
		fields: []field{
			{"Файл или URL:", newInput("Путь к mp3/wav/ogg или ссылка", "")},
			{"Название:", newInput("Введите название трека", "")},
			{"Исполнитель:", newInput("Введите исполнителя", "")},
		},
	}
	m.focus(0)
	return m
}

// NewDeleteModel создает форму удаления трека. title подставляется в поле
func NewDeleteModel(manager *track.Manager, uploader Uploader, title string) *Model {
	m := &Model{
		mode:     DeleteMode,
		manager:  manager,
		uploader: uploader,
		fields: []field{
			{"Название:", newInput("Название трека для удаления", title)},
		},
	}
	m.focus(0)
	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// focus переносит фокус на поле i и возвращает команду мигания курсора
func (m *Model) focus(i int) tea.Cmd {
	m.focusIndex = i
	var cmd tea.Cmd
	for j := range m.fields {
		if j == i {
			cmd = m.fields[j].input.Focus()
			m.fields[j].input.PromptStyle = focusedStyle
			m.fields[j].input.TextStyle = focusedStyle
		} else {
			m.fields[j].input.Blur()
			m.fields[j].input.PromptStyle = blurredStyle
			m.fields[j].input.TextStyle = blurredStyle
		}
	}
	return cmd
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case failedMsg:
		m.busy = false
		m.err = msg.err
		return m, nil

	case uploadProgressMsg:
		m.uploaded = msg.bytes
		return m, m.listenForUpload()

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			return m, func() tea.Msg { return GoBackMsg{} }

		case "enter":
			if m.focusIndex == len(m.fields)-1 {
				return m, m.submit()
			}
			return m, m.focus(m.focusIndex + 1)

		case "tab", "down":
			return m, m.focus((m.focusIndex + 1) % len(m.fields))

		case "shift+tab", "up":
			return m, m.focus((m.focusIndex - 1 + len(m.fields)) % len(m.fields))
		}

	case tea.WindowSizeMsg:
		for i := range m.fields {
			m.fields[i].input.Width = msg.Width - 20
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[m.focusIndex].input, cmd = m.fields[m.focusIndex].input.Update(msg)
	return m, cmd
}

func (m *Model) value(i int) string {
	return strings.TrimSpace(m.fields[i].input.Value())
}

// submit проверяет поля и возвращает команду, выполняющую операцию
func (m *Model) submit() tea.Cmd {
	for i, f := range m.fields {
		if m.value(i) == "" {
			m.err = fmt.Sprintf("Поле '%s' не может быть пустым", strings.TrimSuffix(f.label, ":"))
			return nil
		}
	}

	m.err = ""
	m.busy = true
	m.uploaded = 0

	if m.mode == DeleteMode {
		return m.deleteTrack(m.value(0))
	}

	progress := make(chan int64, 1)
	m.progress = progress
	return tea.Batch(
		m.addTrack(progress, m.value(0), m.value(1), m.value(2)),
		m.listenForUpload(),
	)
}

// listenForUpload ждет очередного значения прогресса загрузки
func (m *Model) listenForUpload() tea.Cmd {
	progress := m.progress
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-progress
		if !ok {
			return nil
		}
		return uploadProgressMsg{bytes: n}
	}
}

func (m *Model) addTrack(progress chan<- int64, source, title, artist string) tea.Cmd {
	return func() tea.Msg {
		defer close(progress)
		ctx := context.Background()

		report := func(n int64) {
			// Промежуточные значения можно пропускать
			select {
			case progress <- n:
			default:
			}
		}

		var (
			h   payload.Handle
			err error
		)
		if strings.Contains(source, "://") {
			h, err = m.uploader.Link(source)
		} else {
			h, err = m.uploader.UploadFile(ctx, source, report)
		}
		if err != nil {
			return failedMsg{err: fmt.Sprintf("Ошибка загрузки: %v", err)}
		}

		if _, err := m.manager.Add(title, artist, h); err != nil {
			_ = m.uploader.Discard(ctx, h)
			return failedMsg{err: err.Error()}
		}
		return DoneMsg{Text: fmt.Sprintf("Добавлен: %s by %s", title, artist)}
	}
}

func (m *Model) deleteTrack(title string) tea.Cmd {
	return func() tea.Msg {
		removed, err := m.manager.Remove(title)
		if err != nil {
			return failedMsg{err: tracklist.Describe(err)}
		}

		text := "Удален: " + removed.Title
		if err := m.uploader.Discard(context.Background(), removed.Payload); err != nil {
			text += fmt.Sprintf(" (не удалось освободить хранилище: %v)", err)
		}
		return DoneMsg{Text: text}
	}
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	header := "Добавление трека"
	if m.mode == DeleteMode {
		header = "Удаление трека"
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	for _, f := range m.fields {
		b.WriteString(labelStyle.Render(f.label))
		b.WriteString(" ")
		b.WriteString(f.input.View())
		b.WriteString("\n\n")
	}

	if m.busy {
		busy := "Выполняется..."
		if m.uploaded > 0 {
			busy += " загружено " + uploader.FormatFileSize(m.uploaded)
		}
		b.WriteString(busyStyle.Render(busy))
		b.WriteString("\n")
	}

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Tab/Enter: следующее поле • Enter на последнем поле: подтвердить • Esc: отмена"))
	return b.String()
}
