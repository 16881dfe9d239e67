// Package ratelimit paces outbound calls. The Reddit and Hacker News
// sources each build their own token-bucket Limiter; the Pain Extractor
// uses DynamicDelay between posts. No Limiter is built for the chat or
// embedding LLM calls.
package ratelimit

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps a token bucket for a fixed wait between calls (Reddit,
// HN). The dynamic, jittered wait within a [min, max) window (the Pain
// Extractor's 3-7s per-post delay) is DynamicDelay, which uses no bucket.
type Limiter struct {
	bucket *rate.Limiter
}

// New builds a Limiter that allows one call every `every`, with a burst of
// one — the pipeline issues calls one at a time, never in parallel.
func New(every time.Duration) *Limiter {
	if every <= 0 {
		every = time.Millisecond
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Every(every), 1)}
}

// Wait blocks until the bucket has a token or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

// DynamicDelay sleeps a random duration in [min, max), honoring ctx
// cancellation. Used between extractor calls so request pacing isn't
// trivially fingerprinted by a fixed interval.
func DynamicDelay(ctx context.Context, min, max time.Duration) error {
	if max <= min {
		max = min + time.Millisecond
	}
	d := min + time.Duration(rand.Int63n(int64(max-min)))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
