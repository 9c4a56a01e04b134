// Package player содержит компоненты для управления воспроизведением аудио
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/hazadus/go-playlist/internal/playlist"
)

// ErrNoPayload у трека нет аудиоданных
var ErrNoPayload = errors.New("у трека нет аудиоданных")

// outputRate частота, на которой инициализируются динамики.
// Треки с другой частотой пересэмплируются
const outputRate = beep.SampleRate(44100)

// resampleQuality качество пересэмплирования beep
const resampleQuality = 4

// Status представляет текущий статус плеера
type Status struct {
	Current    time.Duration // Текущая позиция
	Total      time.Duration // Общая продолжительность, 0 если неизвестна
	IsPlaying  bool          // Воспроизводится ли трек
	StuckCount int           // Сколько тиков подряд позиция не менялась
}

// StatusText возвращает текстовое описание состояния потока
func (s Status) StatusText() string {
	switch {
	case !s.IsPlaying:
		return "Пауза"
	case s.StuckCount == 0:
		return "Воспроизведение"
	case s.StuckCount <= 3:
		return "Буферизация..."
	case s.StuckCount <= 5:
		return "Медленная загрузка"
	default:
		return "Возможная проблема с соединением"
	}
}

// Player управляет воспроизведением треков
type Player struct {
	progressChan chan Status
	doneChan     chan struct{}

	ctx           context.Context
	cancel        context.CancelFunc
	mutex         sync.RWMutex
	isInitialized bool
	isPaused      bool
	logger        *log.Logger

	source   io.ReadCloser
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
}

// NewPlayer создает новый экземпляр плеера
func NewPlayer(logger *log.Logger) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		progressChan: make(chan Status, 1),
		doneChan:     make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
		logger:       logger.With("component", "player"),
	}
}

// Progress возвращает канал для получения обновлений прогресса
func (p *Player) Progress() <-chan Status {
	return p.progressChan
}

// Done возвращает канал, в который приходит сигнал о завершении трека
func (p *Player) Done() <-chan struct{} {
	return p.doneChan
}

// Play начинает воспроизведение трека, останавливая текущий
func (p *Player) Play(track playlist.Track) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stopInternal()

	if track.Payload == nil {
		return fmt.Errorf("%s: %w", track.Title, ErrNoPayload)
	}

	source, err := track.Payload.Open(p.ctx)
	if err != nil {
		return fmt.Errorf("ошибка открытия аудиоданных: %w", err)
	}

	streamer, format, err := decode(source, track.Payload.Format())
	if err != nil {
		source.Close()
		return err
	}

	// Инициализируем speaker только один раз
	if !p.isInitialized {
		if err := speaker.Init(outputRate, outputRate.N(time.Second/5)); err != nil {
			streamer.Close()
			source.Close()
			return fmt.Errorf("ошибка инициализации динамиков: %w", err)
		}
		p.isInitialized = true
	}

	var output beep.Streamer = streamer
	if format.SampleRate != outputRate {
		output = beep.Resample(resampleQuality, format.SampleRate, outputRate, streamer)
	}

	p.source = source
	p.streamer = streamer
	p.ctrl = &beep.Ctrl{Streamer: output}
	p.isPaused = false

	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		select {
		case p.doneChan <- struct{}{}:
		default:
		}
	})))

	p.logger.Info("воспроизведение", "title", track.Title, "format", track.Payload.Format(), "rate", format.SampleRate)

	go p.monitorProgress(format, streamer)

	return nil
}

// Pause приостанавливает или возобновляет воспроизведение
func (p *Player) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.isPaused = !p.isPaused
		p.ctrl.Paused = p.isPaused
		speaker.Unlock()
	}
}

// Stop останавливает воспроизведение
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopInternal()
}

// stopInternal должен вызываться под мьютексом
func (p *Player) stopInternal() {
	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
	}

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}

	if p.source != nil {
		p.source.Close()
		p.source = nil
	}

	p.isPaused = false
}

// Close закрывает плеер и освобождает ресурсы
func (p *Player) Close() error {
	p.cancel()
	p.Stop()
	return nil
}

// IsPlaying возвращает true, если трек воспроизводится
func (p *Player) IsPlaying() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.ctrl != nil && !p.isPaused
}

// monitorProgress раз в секунду отправляет статус, пока играет streamer
func (p *Player) monitorProgress(format beep.Format, streamer beep.StreamSeekCloser) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastPosition := time.Duration(-1)
	stuckCount := 0

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.mutex.RLock()
			if p.streamer != streamer || p.ctrl == nil {
				// Трек сменился или остановлен
				p.mutex.RUnlock()
				return
			}

			speaker.Lock()
			current := format.SampleRate.D(streamer.Position())
			total := format.SampleRate.D(streamer.Len())
			paused := p.isPaused
			speaker.Unlock()
			p.mutex.RUnlock()

			if !paused && current == lastPosition {
				stuckCount++
			} else {
				stuckCount = 0
			}
			lastPosition = current

			status := Status{
				Current:    current,
				Total:      total,
				IsPlaying:  !paused,
				StuckCount: stuckCount,
			}

			select {
			case p.progressChan <- status:
			default:
				// Если канал заблокирован, пропускаем обновление
			}
		}
	}
}
