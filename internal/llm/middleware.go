package llm

import (
	"context"
	"errors"
	"time"

	"archrecon/internal/logging"
)

// Middleware decorates a Generator with a cross-cutting concern.
type Middleware func(Generator) Generator

// Wrap applies middlewares in left-to-right order:
// Wrap(inner, A, B) => A(B(inner)).
func Wrap(inner Generator, mws ...Middleware) Generator {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// RateLimit throttles calls to rps with the given burst. rps <= 0 disables it.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Generator) Generator {
		return &rateLimited{next: next, b: newBucket(rps, burst)}
	}
}

type rateLimited struct {
	next Generator
	b    *bucket
}

func (c *rateLimited) Name() string { return c.next.Name() }

func (c *rateLimited) Close() error { return c.next.Close() }

func (c *rateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.b.Wait(ctx); err != nil {
		return "", err
	}
	return c.next.Generate(ctx, prompt)
}

// Retry retries Generate up to maxAttempts with exponential backoff starting
// at baseDelay. Permanent errors and context cancellation stop immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Generator) Generator {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Generator
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := r.next.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		var pErr *PermanentError
		if errors.As(err, &pErr) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}
		logging.For("llm").Warn("generate failed, retrying", "generator", r.next.Name(), "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.base * time.Duration(1<<i)):
		}
	}
	return "", last
}

// Logging records the duration and size of each call at debug level.
func Logging() Middleware {
	return func(next Generator) Generator {
		return &logged{next: next}
	}
}

type logged struct {
	next Generator
}

func (l *logged) Name() string { return l.next.Name() }
func (l *logged) Close() error { return l.next.Close() }

func (l *logged) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := l.next.Generate(ctx, prompt)
	log := logging.For("llm")
	if err != nil {
		log.Error("generate", "generator", l.next.Name(), "elapsed", time.Since(start), "error", err)
		return out, err
	}
	log.Debug("generate", "generator", l.next.Name(), "elapsed", time.Since(start), "prompt_bytes", len(prompt), "response_bytes", len(out))
	return out, nil
}
