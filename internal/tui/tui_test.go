package tui

import (
	"testing"

	"github.com/hazadus/go-playlist/internal/logging"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/uploader"
)

func TestNewApp(t *testing.T) {
	manager := track.NewManager(logging.Discard())
	service := uploader.NewService(nil, 0, logging.Discard())

	tuiApp := NewApp(manager, service, logging.Discard())
	if tuiApp.manager != manager {
		t.Error("Приложение должно использовать переданный менеджер")
	}
	if tuiApp.uploader == nil {
		t.Error("Сервис загрузки должен быть установлен")
	}
}
