package reveal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReveal_RuneByRune(t *testing.T) {
	s := New(time.Millisecond)

	var ticks []string
	err := s.Reveal(context.Background(), "héy", func(p string) {
		ticks = append(ticks, p)
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"h", "hé", "héy"}, ticks)
}

func TestReveal_Empty(t *testing.T) {
	s := New(time.Millisecond)
	called := false

	err := s.Reveal(context.Background(), "", func(string) { called = true })

	assert.NoError(t, err)
	assert.False(t, called)
}

func TestReveal_Cancel(t *testing.T) {
	s := New(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	var last string
	n := 0
	err := s.Reveal(ctx, "a fairly long reply that will not finish", func(p string) {
		last = p
		n++
		if n == 3 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "a f", last, "no tick may run after cancellation is observed")
}

func TestReveal_ConstantPace(t *testing.T) {
	s := New(2 * time.Millisecond)

	start := time.Now()
	err := s.Reveal(context.Background(), "0123456789", func(string) {})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 18*time.Millisecond)
}

func TestNew_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, New(0).Interval)
	assert.Equal(t, DefaultInterval, New(-time.Second).Interval)
}
