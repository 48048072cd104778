// Package reveal replays a complete reply one character at a time so that it
// reads like a stream.
package reveal

import (
	"context"
	"time"
	"unicode/utf8"
)

// DefaultInterval is the per-character delay.
const DefaultInterval = 15 * time.Millisecond

// Simulator reveals text at a constant pace regardless of its content.
type Simulator struct {
	Interval time.Duration
}

func New(interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Simulator{Interval: interval}
}

// Reveal calls tick with a growing prefix of full, one rune per interval, and
// returns once the whole text was shown. It returns ctx.Err() when cancelled;
// tick is never called after Reveal returns.
func (s *Simulator) Reveal(ctx context.Context, full string, tick func(partial string)) error {
	if full == "" {
		return ctx.Err()
	}

	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := range full {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		_, size := utf8.DecodeRuneInString(full[i:])
		tick(full[:i+size])
	}
	return nil
}
