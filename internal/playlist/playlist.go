// Package playlist содержит упорядоченный список треков с курсором текущего трека.
//
// Playlist не потокобезопасен: при доступе из нескольких горутин весь список
// защищается одним мьютексом (см. track.Manager).
package playlist

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/hazadus/go-playlist/internal/payload"
)

var (
	// ErrNotFound трек с таким названием отсутствует (в том числе в пустом плейлисте)
	ErrNotFound = errors.New("трек не найден")
	// ErrEndOfPlaylist у текущего трека нет следующего
	ErrEndOfPlaylist = errors.New("конец плейлиста")
	// ErrEmpty плейлист пуст или текущий трек не выбран
	ErrEmpty = errors.New("плейлист пуст или трек не выбран")
	// ErrAlreadyAtStart текущий трек первый в плейлисте
	ErrAlreadyAtStart = errors.New("уже начало плейлиста")
)

// noCursor значение курсора для пустого плейлиста
const noCursor = -1

// Track запись плейлиста
type Track struct {
	Title   string
	Artist  string
	Payload payload.Handle
}

func (t Track) String() string {
	return fmt.Sprintf("%s by %s", t.Title, t.Artist)
}

// Entry строка перечисления плейлиста
type Entry struct {
	Current  bool
	Position int // с единицы
	Title    string
	Artist   string
}

// Playlist упорядоченный список треков. Курсор хранится как индекс в срезе
type Playlist struct {
	tracks []Track
	cursor int
}

// New создает пустой плейлист
func New() *Playlist {
	return &Playlist{cursor: noCursor}
}

// Add добавляет трек в конец. Первый трек в пустом плейлисте становится текущим
func (p *Playlist) Add(title, artist string, h payload.Handle) {
	p.tracks = append(p.tracks, Track{Title: title, Artist: artist, Payload: h})
	if len(p.tracks) == 1 {
		p.cursor = 0
	}
}

// Remove удаляет первый трек с точно совпадающим названием и возвращает его.
//
// Если удаляется текущий трек, курсор переходит на следующий, а при его
// отсутствии на предыдущий. Удаление единственного трека сбрасывает курсор.
func (p *Playlist) Remove(title string) (Track, error) {
	i := p.indexOf(title)
	if i < 0 {
		return Track{}, fmt.Errorf("%q: %w", title, ErrNotFound)
	}

	removed := p.tracks[i]
	p.tracks = slices.Delete(p.tracks, i, i+1)

	switch {
	case p.cursor > i:
		p.cursor--
	case p.cursor == i && i == len(p.tracks):
		// у удаленного не было следующего
		p.cursor = i - 1
	}

	return removed, nil
}

// Next переводит курсор на следующий трек
func (p *Playlist) Next() error {
	if p.cursor == noCursor {
		return ErrEmpty
	}
	if p.cursor == len(p.tracks)-1 {
		return ErrEndOfPlaylist
	}
	p.cursor++
	return nil
}

// Prev переводит курсор на предыдущий трек
func (p *Playlist) Prev() error {
	if p.cursor == noCursor {
		return ErrEmpty
	}
	if p.cursor == 0 {
		return ErrAlreadyAtStart
	}
	p.cursor--
	return nil
}

// Current возвращает текущий трек
func (p *Playlist) Current() (Track, bool) {
	if p.cursor == noCursor {
		return Track{}, false
	}
	return p.tracks[p.cursor], true
}

// Len возвращает количество треков
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// Entries перечисляет треки по порядку, отмечая текущий.
// Последовательность можно обходить повторно; плейлист она не изменяет
func (p *Playlist) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for i, t := range p.tracks {
			e := Entry{
				Current:  i == p.cursor,
				Position: i + 1,
				Title:    t.Title,
				Artist:   t.Artist,
			}
			if !yield(e) {
				return
			}
		}
	}
}

func (p *Playlist) indexOf(title string) int {
	for i := range p.tracks {
		if p.tracks[i].Title == title {
			return i
		}
	}
	return -1
}
