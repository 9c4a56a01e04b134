package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hazadus/go-playlist/internal/logging"
	"github.com/hazadus/go-playlist/internal/payload"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/uploader"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type listResponse struct {
	Tracks []trackJSON `json:"tracks"`
	Total  int         `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newTestServer(t *testing.T, maxBytes int64) (*Server, *track.Manager) {
	t.Helper()
	manager := track.NewManager(logging.Discard())
	service := uploader.NewService(nil, maxBytes, logging.Discard())
	return New(manager, service, logging.Discard(), Options{MaxUploadBytes: maxBytes}), manager
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("Ошибка записи поля: %v", err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("Ошибка создания файла формы: %v", err)
		}
		_, _ = fw.Write(content)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/tracks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("Ошибка разбора ответа %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, 0)
	w := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Ожидался статус 200, получено %d", w.Code)
	}
}

func TestAddAndList(t *testing.T) {
	s, _ := newTestServer(t, 1024)

	w := do(t, s, uploadRequest(t, map[string]string{"title": "Hey Jude", "artist": "The Beatles"}, "hey.mp3", []byte("mp3")))
	if w.Code != http.StatusCreated {
		t.Fatalf("Ожидался статус 201, получено %d: %s", w.Code, w.Body.String())
	}
	created := decode[trackJSON](t, w)
	if created.Position != 1 || !created.Current || created.Title != "Hey Jude" {
		t.Errorf("Неожиданный созданный трек: %+v", created)
	}

	w = do(t, s, uploadRequest(t, map[string]string{"title": "Yesterday", "artist": "The Beatles"}, "y.wav", []byte("wav")))
	if w.Code != http.StatusCreated {
		t.Fatalf("Ожидался статус 201, получено %d", w.Code)
	}

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/tracks", nil))
	list := decode[listResponse](t, w)
	if list.Total != 2 || len(list.Tracks) != 2 {
		t.Fatalf("Ожидалось 2 трека, получено %+v", list)
	}
	if !list.Tracks[0].Current || list.Tracks[1].Current || list.Tracks[1].Position != 2 {
		t.Errorf("Неожиданный порядок или курсор: %+v", list.Tracks)
	}
}

func TestAddByURL(t *testing.T) {
	s, manager := newTestServer(t, 0)

	w := do(t, s, uploadRequest(t, map[string]string{
		"title": "Stream", "artist": "Radio", "url": "https://example.com/live.ogg",
	}, "", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Ожидался статус 201, получено %d: %s", w.Code, w.Body.String())
	}
	current, _ := manager.Current()
	if _, ok := current.Payload.(*payload.Remote); !ok {
		t.Errorf("Ожидался *payload.Remote, получено %T", current.Payload)
	}
}

func TestAddValidation(t *testing.T) {
	s, manager := newTestServer(t, 4)

	tests := []struct {
		name     string
		fields   map[string]string
		file     string
		content  []byte
		status   int
		errorKey string
	}{
		{"NoTitle", map[string]string{"artist": "A"}, "a.mp3", []byte("x"), http.StatusBadRequest, "invalid_track"},
		{"NoArtist", map[string]string{"title": "T"}, "a.mp3", []byte("x"), http.StatusBadRequest, "invalid_track"},
		{"NoAudio", map[string]string{"title": "T", "artist": "A"}, "", nil, http.StatusBadRequest, "invalid_track"},
		{"Unsupported", map[string]string{"title": "T", "artist": "A"}, "a.flac", []byte("x"), http.StatusUnsupportedMediaType, "unsupported_format"},
		{"TooLarge", map[string]string{"title": "T", "artist": "A"}, "a.mp3", []byte("12345"), http.StatusRequestEntityTooLarge, "too_large"},
		{"BadURL", map[string]string{"title": "T", "artist": "A", "url": "ftp://x/a.mp3"}, "", nil, http.StatusBadRequest, "invalid_url"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w := do(t, s, uploadRequest(t, test.fields, test.file, test.content))
			if w.Code != test.status {
				t.Fatalf("Ожидался статус %d, получено %d: %s", test.status, w.Code, w.Body.String())
			}
			if got := decode[errorResponse](t, w); got.Error != test.errorKey {
				t.Errorf("Ожидался код %s, получено %s", test.errorKey, got.Error)
			}
		})
	}

	if manager.Len() != 0 {
		t.Errorf("Некорректные запросы не должны добавлять треки, получено %d", manager.Len())
	}
}

func TestAddBodyOverLimit(t *testing.T) {
	s, manager := newTestServer(t, 1<<20)

	content := bytes.Repeat([]byte("x"), 3<<20)
	w := do(t, s, uploadRequest(t, map[string]string{"title": "T", "artist": "A"}, "a.mp3", content))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Ожидался статус 413, получено %d: %s", w.Code, w.Body.String())
	}
	if got := decode[errorResponse](t, w); got.Error != "too_large" {
		t.Errorf("Ожидался код too_large, получено %s", got.Error)
	}
	if manager.Len() != 0 {
		t.Error("Слишком большой файл не должен добавляться")
	}
}

func TestDelete(t *testing.T) {
	s, manager := newTestServer(t, 0)
	_, _ = manager.Add("Группа крови", "Кино", nil)

	w := do(t, s, httptest.NewRequest(http.MethodDelete, "/tracks/"+url.PathEscape("Группа крови"), nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("Ожидался статус 204, получено %d", w.Code)
	}
	if manager.Len() != 0 {
		t.Error("Трек должен быть удален")
	}

	w = do(t, s, httptest.NewRequest(http.MethodDelete, "/tracks/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Ожидался статус 404, получено %d", w.Code)
	}
}

func TestDeleteTitleWithSlash(t *testing.T) {
	s, manager := newTestServer(t, 0)
	_, _ = manager.Add("AC/DC", "Back in Black", nil)

	w := do(t, s, httptest.NewRequest(http.MethodDelete, "/tracks/"+url.PathEscape("AC/DC"), nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("Ожидался статус 204, получено %d: %s", w.Code, w.Body.String())
	}
	if manager.Len() != 0 {
		t.Error("Трек с / в названии должен быть удален")
	}
}

func TestCursor(t *testing.T) {
	s, manager := newTestServer(t, 0)

	post := func(path string) *httptest.ResponseRecorder {
		return do(t, s, httptest.NewRequest(http.MethodPost, path, nil))
	}

	w := post("/cursor/next")
	if w.Code != http.StatusConflict || decode[errorResponse](t, w).Error != "empty" {
		t.Errorf("Пустой плейлист: неожиданный ответ %d %s", w.Code, w.Body.String())
	}

	_, _ = manager.Add("A", "X", nil)
	_, _ = manager.Add("B", "Y", nil)

	w = post("/cursor/next")
	if w.Code != http.StatusOK || decode[trackJSON](t, w).Title != "B" {
		t.Errorf("Ожидался переход на B: %d %s", w.Code, w.Body.String())
	}

	w = post("/cursor/next")
	if w.Code != http.StatusConflict || decode[errorResponse](t, w).Error != "end_of_playlist" {
		t.Errorf("Ожидался end_of_playlist: %d %s", w.Code, w.Body.String())
	}

	_ = post("/cursor/prev")
	w = post("/cursor/prev")
	if w.Code != http.StatusConflict || decode[errorResponse](t, w).Error != "already_at_start" {
		t.Errorf("Ожидался already_at_start: %d %s", w.Code, w.Body.String())
	}
}

func TestCurrent(t *testing.T) {
	s, manager := newTestServer(t, 0)

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/current", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Ожидался статус 404 для пустого плейлиста, получено %d", w.Code)
	}

	_, _ = manager.Add("A", "X", payload.NewBlob("a.mp3", []byte("mp3 bytes")))

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/current", nil))
	if got := decode[trackJSON](t, w); got.Title != "A" || got.Position != 1 {
		t.Errorf("Неожиданный текущий трек: %+v", got)
	}

	w = do(t, s, httptest.NewRequest(http.MethodGet, "/current/audio", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получено %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Ожидался Content-Type audio/mpeg, получено %s", ct)
	}
	if w.Body.String() != "mp3 bytes" {
		t.Errorf("Неожиданное тело ответа: %q", w.Body.String())
	}
}

func TestCurrentAudioWithoutPayload(t *testing.T) {
	s, manager := newTestServer(t, 0)
	_, _ = manager.Add("A", "X", nil)

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/current/audio", nil))
	if w.Code != http.StatusNotFound || decode[errorResponse](t, w).Error != "no_audio" {
		t.Errorf("Неожиданный ответ: %d %s", w.Code, w.Body.String())
	}
}

func TestCurrentAudioRemoteContentType(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/ogg")
		_, _ = w.Write([]byte("ogg bytes"))
	}))
	defer upstream.Close()

	s, manager := newTestServer(t, 0)
	_, _ = manager.Add("Stream", "Radio", payload.NewRemote(upstream.URL+"/live.mp3"))

	w := do(t, s, httptest.NewRequest(http.MethodGet, "/current/audio", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Ожидался статус 200, получено %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/ogg" {
		t.Errorf("Ожидался Content-Type источника audio/ogg, получено %s", ct)
	}
	if w.Body.String() != "ogg bytes" {
		t.Errorf("Неожиданное тело ответа: %q", w.Body.String())
	}
}

func TestCurrentAudioRange(t *testing.T) {
	s, manager := newTestServer(t, 0)
	_, _ = manager.Add("A", "X", payload.NewBlob("a.wav", []byte("0123456789")))

	req := httptest.NewRequest(http.MethodGet, "/current/audio", nil)
	req.Header.Set("Range", "bytes=2-5")
	w := do(t, s, req)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("Ожидался статус 206, получено %d", w.Code)
	}
	if w.Body.String() != "2345" {
		t.Errorf("Ожидался диапазон 2345, получено %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("Ожидался Content-Type audio/wav, получено %s", ct)
	}
}
