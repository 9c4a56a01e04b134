// Package logging настраивает структурированный логгер приложения
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New создает логгер с временными метками. По умолчанию пишет в os.Stderr
func New(w io.Writer, level string) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("неверный уровень логирования %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	}), nil
}

// OpenFile открывает файл для логов в режиме дозаписи.
// Нужен TUI: stdout занят интерфейсом
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла логов: %w", err)
	}
	return f, nil
}

// Discard логгер, который ничего не пишет. Используется в тестах
func Discard() *log.Logger {
	return log.New(io.Discard)
}
