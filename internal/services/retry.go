package services

import (
	"context"
	"errors"
	"time"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/llm"
)

// DefaultRetryDelay is the wait before the single rate-limit retry.
const DefaultRetryDelay = 3 * time.Second

// RetryPolicy retries a call exactly once, after Delay, when the first
// attempt was rate limited. Every other error is returned as is, and so is a
// second rate limit.
type RetryPolicy struct {
	Delay time.Duration
	// OnRetry, when set, runs just before the wait.
	OnRetry func(err error)
}

func (p RetryPolicy) Do(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	reply, err := call(ctx)
	if err == nil || !errors.Is(err, llm.ErrRateLimited) {
		return reply, err
	}

	if p.OnRetry != nil {
		p.OnRetry(err)
	}

	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}

	return call(ctx)
}
