// Package payload описывает непрозрачные ссылки на аудиоданные треков
package payload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/hazadus/go-playlist/internal/streaming"
)

// ErrUnsupportedFormat возвращается для файлов, которые плеер не умеет декодировать
var ErrUnsupportedFormat = errors.New("неподдерживаемый формат аудио")

// Handle ссылка на аудиоданные трека. Плейлист хранит её, но не интерпретирует
type Handle interface {
	// Name исходное имя файла или URL
	Name() string
	// Format расширение в нижнем регистре без точки: mp3, wav, ogg
	Format() string
	// Size размер в байтах, -1 если неизвестен
	Size() int64
	// Open открывает поток с аудиоданными
	Open(ctx context.Context) (io.ReadCloser, error)
}

var supportedFormats = map[string]string{
	"mp3": "audio/mpeg",
	"wav": "audio/wav",
	"ogg": "audio/ogg",
}

// FormatOf определяет формат по имени файла или пути в URL
func FormatOf(name string) string {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && u.Host != "" {
		return strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// Supported сообщает, умеет ли приложение воспроизводить формат
func Supported(format string) bool {
	_, ok := supportedFormats[format]
	return ok
}

// ContentType возвращает MIME-тип для формата
func ContentType(format string) string {
	if ct, ok := supportedFormats[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Blob аудиоданные, загруженные в память
type Blob struct {
	name string
	data []byte
}

// NewBlob создает Blob из имени файла и содержимого
func NewBlob(name string, data []byte) *Blob {
	return &Blob{name: name, data: data}
}

func (b *Blob) Name() string   { return b.name }
func (b *Blob) Format() string { return FormatOf(b.name) }
func (b *Blob) Size() int64    { return int64(len(b.data)) }

// Open возвращает reader поверх данных в памяти. Reader поддерживает Seek
func (b *Blob) Open(_ context.Context) (io.ReadCloser, error) {
	return readSeekNopCloser{bytes.NewReader(b.data)}, nil
}

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

// Opener открывает объект в хранилище по ключу
type Opener interface {
	OpenFile(ctx context.Context, key string) (io.ReadCloser, error)
}

// Object аудиофайл, сохраненный в S3
type Object struct {
	Key  string
	URL  string
	name string
	size int64
	from Opener
}

// NewObject создает ссылку на объект в хранилище
func NewObject(name, key, url string, size int64, from Opener) *Object {
	return &Object{Key: key, URL: url, name: name, size: size, from: from}
}

func (o *Object) Name() string   { return o.name }
func (o *Object) Format() string { return FormatOf(o.name) }
func (o *Object) Size() int64    { return o.size }

func (o *Object) Open(ctx context.Context) (io.ReadCloser, error) {
	if o.from == nil {
		return nil, fmt.Errorf("объект %s: хранилище не задано", o.Key)
	}
	return o.from.OpenFile(ctx, o.Key)
}

// streamBufferSize размер буфера для потокового чтения по URL
const streamBufferSize = 256 * 1024

// Remote аудиофайл, доступный по HTTP(S)
type Remote struct {
	URL string
}

// NewRemote создает ссылку на удаленный файл
func NewRemote(rawURL string) *Remote {
	return &Remote{URL: rawURL}
}

func (r *Remote) Name() string   { return r.URL }
func (r *Remote) Format() string { return FormatOf(r.URL) }
func (r *Remote) Size() int64    { return -1 }

func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	return streaming.NewReader(ctx, r.URL, streamBufferSize)
}
