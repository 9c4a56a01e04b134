package streaming

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewReader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("Ожидался User-Agent %s, получено %s", userAgent, r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Range") != "bytes=0-" {
			t.Errorf("Ожидался заголовок Range, получено %q", r.Header.Get("Range"))
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("audio data"))
	}))
	defer server.Close()

	reader, err := NewReader(context.Background(), server.URL+"/track.mp3", 1024)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Ошибка чтения: %v", err)
	}
	if string(body) != "audio data" {
		t.Errorf("Ожидалось 'audio data', получено %q", string(body))
	}
	if reader.ContentType() != "audio/mpeg" {
		t.Errorf("Ожидался Content-Type audio/mpeg, получено %s", reader.ContentType())
	}
}

func TestNewReaderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewReader(context.Background(), server.URL, 1024)
	if err == nil {
		t.Fatal("Ожидалась ошибка для ответа 404")
	}
	if !strings.Contains(err.Error(), "ошибка HTTP") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

func TestNewReaderCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewReader(ctx, server.URL, 1024); err == nil {
		t.Error("Ожидалась ошибка для отмененного контекста")
	}
}
