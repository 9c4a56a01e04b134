// Package uploader превращает загруженные аудиофайлы в payload треков
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/hazadus/go-playlist/internal/payload"
)

var (
	// ErrTooLarge файл превышает допустимый размер
	ErrTooLarge = errors.New("файл слишком большой")
	// ErrInvalidURL ссылка не является http(s) адресом
	ErrInvalidURL = errors.New("неверный URL")
)

// ObjectStore хранилище файлов. Реализуется s3.Storage
type ObjectStore interface {
	payload.Opener
	UploadFile(ctx context.Context, reader io.Reader, key string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// Service управляет процессом загрузки файлов
type Service struct {
	store    ObjectStore
	maxBytes int64
	logger   *log.Logger
}

// NewService создает сервис загрузки. При store == nil файлы хранятся в памяти
func NewService(store ObjectStore, maxBytes int64, logger *log.Logger) *Service {
	return &Service{
		store:    store,
		maxBytes: maxBytes,
		logger:   logger.With("component", "uploader"),
	}
}

// Store сохраняет аудиоданные из reader. name задает имя файла и формат
func (s *Service) Store(ctx context.Context, name string, r io.Reader, progressCallback func(int64)) (payload.Handle, error) {
	format := payload.FormatOf(name)
	if !payload.Supported(format) {
		return nil, fmt.Errorf("%s: %w", name, payload.ErrUnsupportedFormat)
	}

	reader := &limitReader{Reader: r, remaining: s.maxBytes}
	var body io.Reader = reader
	if progressCallback != nil {
		body = &ProgressReader{Reader: reader, OnProgress: progressCallback}
	}

	if s.store == nil {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения файла: %w", err)
		}
		s.logger.Debug("файл сохранен в памяти", "name", name, "size", len(data))
		return payload.NewBlob(name, data), nil
	}

	// Названия и имена файлов могут повторяться, поэтому ключ уникальный
	key := uuid.NewString() + "." + format
	fileURL, err := s.store.UploadFile(ctx, body, key)
	if err != nil {
		// s3manager не сохраняет цепочку ошибок reader
		if reader.exceeded() {
			return nil, fmt.Errorf("%s: %w", name, ErrTooLarge)
		}
		return nil, fmt.Errorf("ошибка загрузки в S3: %w", err)
	}

	s.logger.Info("файл загружен в S3", "name", name, "key", key, "size", reader.read)
	return payload.NewObject(name, key, fileURL, reader.read, s.store), nil
}

// UploadFile сохраняет локальный файл
func (s *Service) UploadFile(ctx context.Context, filePath string, progressCallback func(int64)) (payload.Handle, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("файл не найден: %s", filePath)
		}
		return nil, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s является директорией", filePath)
	}
	if s.maxBytes > 0 && info.Size() > s.maxBytes {
		return nil, fmt.Errorf("%s (%s): %w", filePath, FormatFileSize(info.Size()), ErrTooLarge)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	return s.Store(ctx, filePath, file, progressCallback)
}

// Link создает payload для файла, доступного по ссылке
func (s *Service) Link(rawURL string) (payload.Handle, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	if format := payload.FormatOf(rawURL); !payload.Supported(format) {
		return nil, fmt.Errorf("%s: %w", rawURL, payload.ErrUnsupportedFormat)
	}
	return payload.NewRemote(rawURL), nil
}

// Discard освобождает хранилище удаленного из плейлиста трека
func (s *Service) Discard(ctx context.Context, h payload.Handle) error {
	obj, ok := h.(*payload.Object)
	if !ok || s.store == nil {
		return nil
	}
	if err := s.store.DeleteFile(ctx, obj.Key); err != nil {
		return err
	}
	s.logger.Info("файл удален из S3", "key", obj.Key)
	return nil
}

// limitReader возвращает ErrTooLarge, если прочитано больше remaining байт.
// remaining <= 0 отключает ограничение
type limitReader struct {
	io.Reader
	remaining int64
	read      int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.Reader.Read(p)
	l.read += int64(n)
	if l.exceeded() {
		return n, ErrTooLarge
	}
	return n, err
}

func (l *limitReader) exceeded() bool {
	return l.remaining > 0 && l.read > l.remaining
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}

// FormatFileSize форматирует размер файла в читаемом виде
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
