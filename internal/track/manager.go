// Package track содержит логику управления треками сессии
package track

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/hazadus/go-playlist/internal/payload"
	"github.com/hazadus/go-playlist/internal/playlist"
)

// ErrInvalidTrack не заполнены название или исполнитель
var ErrInvalidTrack = errors.New("нужно указать название и исполнителя")

// Manager управляет плейлистом сессии. Все операции выполняются под одним мьютексом
type Manager struct {
	mu       sync.Mutex
	playlist *playlist.Playlist
	logger   *log.Logger
}

// NewManager создает новый экземпляр Manager с пустым плейлистом
func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		playlist: playlist.New(),
		logger:   logger.With("component", "playlist"),
	}
}

// Add добавляет трек в конец плейлиста и возвращает его строку
func (m *Manager) Add(title, artist string, h payload.Handle) (playlist.Entry, error) {
	title = strings.TrimSpace(title)
	artist = strings.TrimSpace(artist)
	if title == "" || artist == "" {
		return playlist.Entry{}, ErrInvalidTrack
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.playlist.Add(title, artist, h)
	entries := slices.Collect(m.playlist.Entries())
	m.logger.Info("трек добавлен", "title", title, "artist", artist, "total", len(entries))
	return entries[len(entries)-1], nil
}

// Remove удаляет первый трек с указанным названием и возвращает его
func (m *Manager) Remove(title string) (playlist.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed, err := m.playlist.Remove(title)
	if err != nil {
		m.logger.Warn("трек для удаления не найден", "title", title)
		return playlist.Track{}, err
	}
	m.logger.Info("трек удален", "title", title, "total", m.playlist.Len())
	return removed, nil
}

// Next переходит к следующему треку
func (m *Manager) Next() (playlist.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.move(m.playlist.Next, "next")
}

// Prev переходит к предыдущему треку
func (m *Manager) Prev() (playlist.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.move(m.playlist.Prev, "prev")
}

// move должен вызываться под мьютексом
func (m *Manager) move(step func() error, direction string) (playlist.Track, error) {
	if err := step(); err != nil {
		m.logger.Debug("курсор не сдвинут", "direction", direction, "reason", err)
		return playlist.Track{}, err
	}
	current, _ := m.playlist.Current()
	m.logger.Debug("курсор сдвинут", "direction", direction, "current", current.Title)
	return current, nil
}

// Current возвращает текущий трек
func (m *Manager) Current() (playlist.Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playlist.Current()
}

// Entries возвращает снимок плейлиста для отображения
func (m *Manager) Entries() []playlist.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Collect(m.playlist.Entries())
}

// Len возвращает количество треков
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playlist.Len()
}
