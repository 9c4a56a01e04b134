// Package tracklist содержит модель экрана плейлиста для TUI
package tracklist

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/playlist"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	currentItemStyle  = lipgloss.NewStyle().Bold(true)
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
	statusOkStyle     = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("46"))
	statusWarnStyle   = lipgloss.NewStyle().PaddingLeft(4).Foreground(lipgloss.Color("214"))
	emptyStyle        = lipgloss.NewStyle().Margin(1, 0, 1, 4).Foreground(lipgloss.Color("241"))
)

// PlayRequestedMsg отправляется при открытии экрана воспроизведения
type PlayRequestedMsg struct {
	Track playlist.Track
}

// AddRequestedMsg отправляется при открытии формы добавления
type AddRequestedMsg struct{}

// DeleteRequestedMsg отправляется при открытии формы удаления.
// Title содержит название выделенного трека
type DeleteRequestedMsg struct {
	Title string
}

// Describe возвращает сообщение для пользователя по ошибке плейлиста
func Describe(err error) string {
	switch {
	case errors.Is(err, playlist.ErrEndOfPlaylist):
		return "Конец плейлиста, следующего трека нет"
	case errors.Is(err, playlist.ErrAlreadyAtStart):
		return "Уже в начале плейлиста"
	case errors.Is(err, playlist.ErrEmpty):
		return "Плейлист пуст или трек не выбран"
	case errors.Is(err, playlist.ErrNotFound):
		return "Не удалось удалить: " + err.Error()
	default:
		return err.Error()
	}
}

// entryItem реализует интерфейс list.Item для строки плейлиста
type entryItem struct {
	entry playlist.Entry
}

func (i entryItem) FilterValue() string {
	return fmt.Sprintf("%s %s", i.entry.Title, i.entry.Artist)
}

// entryDelegate реализует отображение элементов списка
type entryDelegate struct{}

func (d entryDelegate) Height() int                             { return 1 }
func (d entryDelegate) Spacing() int                            { return 0 }
func (d entryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d entryDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(entryItem)
	if !ok {
		return
	}

	fmt.Fprint(w, renderEntry(i.entry, index == m.Index()))
}

func renderEntry(e playlist.Entry, selected bool) string {
	marker := "  "
	if e.Current {
		marker = "▶ "
	}
	str := fmt.Sprintf("%s%d. %s by %s",
		marker,
		e.Position,
		utils.TruncateString(e.Title, 50),
		utils.TruncateString(e.Artist, 30))

	if e.Current {
		str = currentItemStyle.Render(str)
	}

	if selected {
		return selectedItemStyle.Render("> " + str)
	}
	return itemStyle.Render(str)
}

// Model представляет модель экрана плейлиста
type Model struct {
	list      list.Model
	manager   *track.Manager
	status    string
	statusErr bool
	quitting  bool
}

// NewModel создает новую модель экрана плейлиста
func NewModel(manager *track.Manager) *Model {
	l := list.New(nil, entryDelegate{}, 0, 0)
	l.Title = "Плейлист"
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	// Буквенные клавиши заняты командами плейлиста
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	m := &Model{
		list:    l,
		manager: manager,
	}
	m.RefreshData()
	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// RefreshData перечитывает плейлист и выделяет текущий трек
func (m *Model) RefreshData() {
	entries := m.manager.Entries()

	items := make([]list.Item, len(entries))
	current := -1
	for i, e := range entries {
		items[i] = entryItem{entry: e}
		if e.Current {
			current = i
		}
	}

	m.list.SetItems(items)
	if current >= 0 {
		m.list.Select(current)
	}
}

// SetStatus задает строку статуса. isErr выделяет предупреждения
func (m *Model) SetStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 6) // Оставляем место для статуса и справки
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "n":
			m.step(m.manager.Next)
			return m, nil

		case "p":
			m.step(m.manager.Prev)
			return m, nil

		case "a":
			return m, func() tea.Msg { return AddRequestedMsg{} }

		case "d":
			var title string
			if item, ok := m.list.SelectedItem().(entryItem); ok {
				title = item.entry.Title
			}
			return m, func() tea.Msg { return DeleteRequestedMsg{Title: title} }

		case "enter":
			current, ok := m.manager.Current()
			if !ok {
				m.SetStatus(Describe(playlist.ErrEmpty), true)
				return m, nil
			}
			return m, func() tea.Msg { return PlayRequestedMsg{Track: current} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) step(move func() (playlist.Track, error)) {
	t, err := move()
	if err != nil {
		m.SetStatus(Describe(err), true)
		return
	}
	m.SetStatus("Сейчас играет: "+t.String(), false)
	m.RefreshData()
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	var b strings.Builder
	if len(m.list.Items()) == 0 {
		b.WriteString(titleStyle.Render("Плейлист"))
		b.WriteString("\n")
		b.WriteString(emptyStyle.Render("Плейлист пуст. Нажмите 'a', чтобы добавить трек"))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	if m.status != "" {
		style := statusOkStyle
		if m.statusErr {
			style = statusWarnStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"Всего треков: %d\nn/p: следующий/предыдущий • a: добавить • d: удалить • Enter: воспроизвести • q: выход",
		m.manager.Len())))
	return b.String()
}
