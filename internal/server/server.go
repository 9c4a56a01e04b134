// Package server предоставляет HTTP API для управления плейлистом
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"github.com/hazadus/go-playlist/internal/payload"
	"github.com/hazadus/go-playlist/internal/playlist"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/uploader"
)

// Uploader сохраняет аудиоданные треков. Реализуется uploader.Service
type Uploader interface {
	Store(ctx context.Context, name string, r io.Reader, progressCallback func(int64)) (payload.Handle, error)
	Link(rawURL string) (payload.Handle, error)
	Discard(ctx context.Context, h payload.Handle) error
}

// Options настройки сервера
type Options struct {
	// Sentry включает middleware sentrygin. sentry.Init вызывается заранее
	Sentry bool
	// MaxUploadBytes ограничивает размер тела multipart запроса
	MaxUploadBytes int64
}

// Server обслуживает HTTP API плейлиста
type Server struct {
	manager  *track.Manager
	uploader Uploader
	logger   *log.Logger
	options  Options
	engine   *gin.Engine
}

// trackJSON представление строки плейлиста в ответах API
type trackJSON struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Current  bool   `json:"current"`
}

func toJSON(e playlist.Entry) trackJSON {
	return trackJSON{
		Position: e.Position,
		Title:    e.Title,
		Artist:   e.Artist,
		Current:  e.Current,
	}
}

// New создает сервер и регистрирует маршруты
func New(manager *track.Manager, up Uploader, logger *log.Logger, options Options) *Server {
	s := &Server{
		manager:  manager,
		uploader: up,
		logger:   logger.With("component", "server"),
		options:  options,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	if options.Sentry {
		engine.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if options.MaxUploadBytes > 0 {
		engine.MaxMultipartMemory = options.MaxUploadBytes
	}
	// Названия могут содержать "/", в пути он передается как %2F
	engine.UseRawPath = true
	engine.UnescapePathValues = true

	engine.GET("/healthz", s.health)
	engine.GET("/tracks", s.listTracks)
	engine.POST("/tracks", s.addTrack)
	engine.DELETE("/tracks/:title", s.deleteTrack)
	engine.GET("/current", s.current)
	engine.GET("/current/audio", s.currentAudio)
	engine.POST("/cursor/next", s.move(s.manager.Next))
	engine.POST("/cursor/prev", s.move(s.manager.Prev))

	s.engine = engine
	return s
}

// Handler возвращает http.Handler сервера
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe запускает сервер и останавливает его при отмене ctx
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("сервер запущен", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("ошибка запуска сервера: %w", err)
	case <-ctx.Done():
		s.logger.Info("остановка сервера")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("запрос",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// fail отвечает ошибкой. Неожиданные ошибки отправляются в Sentry
func (s *Server) fail(c *gin.Context, status int, code string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("ошибка обработки запроса", "path", c.Request.URL.Path, "err", err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": err.Error()})
}

// playlistError сопоставляет ошибку плейлиста со статусом и кодом ответа
func playlistError(err error) (int, string) {
	switch {
	case errors.Is(err, playlist.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, playlist.ErrEndOfPlaylist):
		return http.StatusConflict, "end_of_playlist"
	case errors.Is(err, playlist.ErrAlreadyAtStart):
		return http.StatusConflict, "already_at_start"
	case errors.Is(err, playlist.ErrEmpty):
		return http.StatusConflict, "empty"
	case errors.Is(err, track.ErrInvalidTrack):
		return http.StatusBadRequest, "invalid_track"
	case errors.Is(err, uploader.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, payload.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported_format"
	case errors.Is(err, uploader.ErrInvalidURL):
		return http.StatusBadRequest, "invalid_url"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listTracks(c *gin.Context) {
	entries := s.manager.Entries()
	tracks := make([]trackJSON, 0, len(entries))
	for _, e := range entries {
		tracks = append(tracks, toJSON(e))
	}
	c.JSON(http.StatusOK, gin.H{"tracks": tracks, "total": len(tracks)})
}

func (s *Server) addTrack(c *gin.Context) {
	if limit := s.options.MaxUploadBytes; limit > 0 {
		// Запас в 1 МБ на поля формы и заголовки multipart
		limit += 1 << 20
		if c.Request.ContentLength > limit {
			s.fail(c, http.StatusRequestEntityTooLarge, "too_large", uploader.ErrTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	// PostForm молча игнорирует ошибки разбора, поэтому форма разбирается заранее
	if _, err := c.MultipartForm(); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.fail(c, http.StatusRequestEntityTooLarge, "too_large", fmt.Errorf("%s: %w", err, uploader.ErrTooLarge))
			return
		}
		s.fail(c, http.StatusBadRequest, "invalid_form", fmt.Errorf("ошибка разбора формы: %w", err))
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	artist := strings.TrimSpace(c.PostForm("artist"))
	if title == "" || artist == "" {
		s.fail(c, http.StatusBadRequest, "invalid_track", track.ErrInvalidTrack)
		return
	}

	h, err := s.payloadFromRequest(c)
	if err != nil {
		status, code := playlistError(err)
		s.fail(c, status, code, err)
		return
	}

	added, err := s.manager.Add(title, artist, h)
	if err != nil {
		_ = s.uploader.Discard(c.Request.Context(), h)
		status, code := playlistError(err)
		s.fail(c, status, code, err)
		return
	}

	c.JSON(http.StatusCreated, toJSON(added))
}

// errNoAudio в запросе нет ни файла, ни ссылки
var errNoAudio = fmt.Errorf("нужно передать файл или ссылку: %w", track.ErrInvalidTrack)

func (s *Server) payloadFromRequest(c *gin.Context) (payload.Handle, error) {
	if rawURL := strings.TrimSpace(c.PostForm("url")); rawURL != "" {
		return s.uploader.Link(rawURL)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return nil, errNoAudio
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	return s.uploader.Store(c.Request.Context(), fh.Filename, file, nil)
}

func (s *Server) deleteTrack(c *gin.Context) {
	removed, err := s.manager.Remove(c.Param("title"))
	if err != nil {
		status, code := playlistError(err)
		s.fail(c, status, code, err)
		return
	}

	if err := s.uploader.Discard(c.Request.Context(), removed.Payload); err != nil {
		s.logger.Warn("не удалось освободить хранилище", "title", removed.Title, "err", err)
	}
	c.Status(http.StatusNoContent)
}

// currentEntry возвращает строку плейлиста текущего трека
func (s *Server) currentEntry() (playlist.Entry, bool) {
	for _, e := range s.manager.Entries() {
		if e.Current {
			return e, true
		}
	}
	return playlist.Entry{}, false
}

func (s *Server) current(c *gin.Context) {
	e, ok := s.currentEntry()
	if !ok {
		s.fail(c, http.StatusNotFound, "empty", playlist.ErrEmpty)
		return
	}
	c.JSON(http.StatusOK, toJSON(e))
}

func (s *Server) currentAudio(c *gin.Context) {
	current, ok := s.manager.Current()
	if !ok {
		s.fail(c, http.StatusNotFound, "empty", playlist.ErrEmpty)
		return
	}
	if current.Payload == nil {
		s.fail(c, http.StatusNotFound, "no_audio", errors.New("у трека нет аудиоданных"))
		return
	}

	rc, err := current.Payload.Open(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusBadGateway, "open_failed", err)
		return
	}
	defer rc.Close()

	contentType := payload.ContentType(current.Payload.Format())
	// Источник по ссылке может знать формат точнее расширения
	if typed, ok := rc.(interface{ ContentType() string }); ok && strings.HasPrefix(typed.ContentType(), "audio/") {
		contentType = typed.ContentType()
	}

	// Данные в памяти поддерживают Range запросы
	if rs, ok := rc.(io.ReadSeeker); ok {
		c.Header("Content-Type", contentType)
		http.ServeContent(c.Writer, c.Request, current.Payload.Name(), time.Time{}, rs)
		return
	}

	c.DataFromReader(http.StatusOK, current.Payload.Size(), contentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", current.Payload.Name()),
	})
}

func (s *Server) move(step func() (playlist.Track, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := step(); err != nil {
			status, code := playlistError(err)
			s.fail(c, status, code, err)
			return
		}
		e, _ := s.currentEntry()
		c.JSON(http.StatusOK, toJSON(e))
	}
}
