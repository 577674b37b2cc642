package llm

import (
	"context"
	"math"
	"sync"
	"time"
)

// bucket is a reservation-based token bucket. Callers take a token up front
// and sleep for the debt, so no refill goroutine is needed.
type bucket struct {
	mu     sync.Mutex
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
	now    func() time.Time
}

// newBucket returns nil when rps <= 0; a nil bucket never waits.
func newBucket(rps float64, burst int) *bucket {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &bucket{rate: rps, burst: float64(burst), tokens: float64(burst), now: time.Now}
}

// reserve takes one token and returns how long the caller must wait for it.
func (b *bucket) reserve() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if !b.last.IsZero() {
		b.tokens = math.Min(b.burst, b.tokens+now.Sub(b.last).Seconds()*b.rate)
	}
	b.last = now
	b.tokens--
	if b.tokens >= 0 {
		return 0
	}
	return time.Duration(-b.tokens / b.rate * float64(time.Second))
}

func (b *bucket) refund() {
	b.mu.Lock()
	b.tokens = math.Min(b.burst, b.tokens+1)
	b.mu.Unlock()
}

// Wait blocks until the reserved token is due. A canceled wait gives the token
// back.
func (b *bucket) Wait(ctx context.Context) error {
	if b == nil {
		return nil
	}
	d := b.reserve()
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		b.refund()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
