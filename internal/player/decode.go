package player

import (
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/hazadus/go-playlist/internal/payload"
)

// decode выбирает декодер по формату payload
func decode(rc io.ReadCloser, format string) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		streamer beep.StreamSeekCloser
		f        beep.Format
		err      error
	)

	switch format {
	case "mp3":
		streamer, f, err = mp3.Decode(rc)
	case "wav":
		streamer, f, err = wav.Decode(rc)
	case "ogg":
		streamer, f, err = vorbis.Decode(rc)
	default:
		return nil, beep.Format{}, fmt.Errorf("%q: %w", format, payload.ErrUnsupportedFormat)
	}

	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("ошибка декодирования %s: %w", format, err)
	}
	return streamer, f, nil
}
