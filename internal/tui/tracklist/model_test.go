package tracklist

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-playlist/internal/logging"
	"github.com/hazadus/go-playlist/internal/playlist"
	"github.com/hazadus/go-playlist/internal/track"
)

func newManager(t *testing.T, titles ...string) *track.Manager {
	t.Helper()
	manager := track.NewManager(logging.Discard())
	for _, title := range titles {
		if _, err := manager.Add(title, "Artist", nil); err != nil {
			t.Fatalf("Ошибка добавления трека: %v", err)
		}
	}
	return manager
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewModel(t *testing.T) {
	model := NewModel(newManager(t, "Track 1", "Track 2"))

	if len(model.list.Items()) != 2 {
		t.Fatalf("Ожидалось 2 элемента, получено %d", len(model.list.Items()))
	}
	if model.list.Index() != 0 {
		t.Errorf("Должен быть выделен текущий трек, выделен %d", model.list.Index())
	}
}

func TestRenderEntry(t *testing.T) {
	current := renderEntry(playlist.Entry{Current: true, Position: 1, Title: "Hey Jude", Artist: "The Beatles"}, false)
	if !strings.Contains(current, "▶ 1. Hey Jude by The Beatles") {
		t.Errorf("Неожиданная строка текущего трека: %q", current)
	}

	other := renderEntry(playlist.Entry{Position: 2, Title: "Yesterday", Artist: "The Beatles"}, false)
	if strings.Contains(other, "▶") || !strings.Contains(other, "2. Yesterday by The Beatles") {
		t.Errorf("Неожиданная строка трека: %q", other)
	}
}

func TestNextPrevKeys(t *testing.T) {
	manager := newManager(t, "A", "B")
	model := NewModel(manager)

	model, _ = model.Update(key('n'))
	if current, _ := manager.Current(); current.Title != "B" {
		t.Errorf("Ожидался текущий трек B, получено %s", current.Title)
	}
	if model.statusErr || !strings.Contains(model.status, "B by Artist") {
		t.Errorf("Неожиданный статус: %q", model.status)
	}
	if model.list.Index() != 1 {
		t.Errorf("Выделение должно следовать за текущим треком, получено %d", model.list.Index())
	}

	model, _ = model.Update(key('n'))
	if !model.statusErr || model.status != Describe(playlist.ErrEndOfPlaylist) {
		t.Errorf("Ожидалось предупреждение о конце плейлиста, получено %q", model.status)
	}

	model, _ = model.Update(key('p'))
	model, _ = model.Update(key('p'))
	if model.status != Describe(playlist.ErrAlreadyAtStart) {
		t.Errorf("Ожидалось предупреждение о начале плейлиста, получено %q", model.status)
	}
}

func TestEnterOnEmptyPlaylist(t *testing.T) {
	model := NewModel(newManager(t))

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("Для пустого плейлиста не должно быть команды")
	}
	if !model.statusErr {
		t.Error("Ожидалось предупреждение")
	}
	if !strings.Contains(model.View(), "Плейлист пуст") {
		t.Error("Экран должен сообщать о пустом плейлисте")
	}
}

func TestRequestMessages(t *testing.T) {
	model := NewModel(newManager(t, "Hey Jude"))

	tests := []struct {
		msg  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, "tracklist.PlayRequestedMsg"},
		{key('a'), "tracklist.AddRequestedMsg"},
		{key('d'), "tracklist.DeleteRequestedMsg"},
	}

	for _, test := range tests {
		_, cmd := model.Update(test.msg)
		if cmd == nil {
			t.Fatalf("%s: ожидалась команда", test.want)
		}
		msg := cmd()
		if got := fmt.Sprintf("%T", msg); got != test.want {
			t.Errorf("Ожидалось %s, получено %s", test.want, got)
		}
		if del, ok := msg.(DeleteRequestedMsg); ok && del.Title != "Hey Jude" {
			t.Errorf("Форма удаления должна получить выделенный трек, получено %q", del.Title)
		}
	}
}

func TestViewFooter(t *testing.T) {
	model := NewModel(newManager(t, "A", "B", "C"))
	if !strings.Contains(model.View(), "Всего треков: 3") {
		t.Error("Подвал должен содержать количество треков")
	}
}
