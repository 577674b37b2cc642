package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flaky struct {
	failures int
	err      error
	calls    int
}

func (f *flaky) Name() string { return "flaky" }
func (f *flaky) Close() error { return nil }
func (f *flaky) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "ok:" + prompt, nil
}

func TestFakeGenerator(t *testing.T) {
	g := NewFakeGenerator("default").On("modules", "mods").On("endpoints", "eps")
	ctx := context.Background()

	out, err := g.Generate(ctx, "update the modules please")
	require.NoError(t, err)
	assert.Equal(t, "mods", out)

	out, err = g.Generate(ctx, "something else")
	require.NoError(t, err)
	assert.Equal(t, "default", out)
	assert.Equal(t, []string{"update the modules please", "something else"}, g.Prompts())

	boom := errors.New("boom")
	g.FailWith(boom)
	_, err = g.Generate(ctx, "modules")
	assert.ErrorIs(t, err, boom)

	_, err = NewFakeGenerator("").Generate(ctx, "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestRetryRecovers(t *testing.T) {
	inner := &flaky{failures: 2, err: errors.New("transient")}
	g := Wrap(inner, Retry(3, time.Millisecond))

	out, err := g.Generate(context.Background(), "p")

	require.NoError(t, err)
	assert.Equal(t, "ok:p", out)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryGivesUp(t *testing.T) {
	transient := errors.New("transient")
	inner := &flaky{failures: 10, err: transient}
	g := Retry(2, time.Millisecond)(inner)

	_, err := g.Generate(context.Background(), "p")

	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 2, inner.calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	inner := &flaky{failures: 10, err: NewPermanentError(errors.New("bad key"))}
	g := Retry(5, time.Millisecond)(inner)

	_, err := g.Generate(context.Background(), "p")

	var pErr *PermanentError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, 1, inner.calls)
}

func TestWrapOrderAndNames(t *testing.T) {
	g := Wrap(NewFakeGenerator("x"), Logging(), Retry(1, 0), RateLimit(0, 0))
	t.Cleanup(func() { _ = g.Close() })

	assert.Equal(t, "FakeLLM", g.Name())
	out, err := g.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestRateLimitSpacing(t *testing.T) {
	g := RateLimit(2, 1)(NewFakeGenerator("x"))
	t.Cleanup(func() { _ = g.Close() })
	ctx := context.Background()

	start := time.Now()
	_, err := g.Generate(ctx, "a")
	require.NoError(t, err)
	_, err = g.Generate(ctx, "b")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 450*time.Millisecond)
}

func TestRateLimitHonorsContext(t *testing.T) {
	g := RateLimit(0.1, 1)(NewFakeGenerator("x"))
	t.Cleanup(func() { _ = g.Close() })

	_, err := g.Generate(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = g.Generate(ctx, "second")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBucketReservesAndRefunds(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := t0
	b := newBucket(1, 2)
	b.now = func() time.Time { return clock }

	assert.Zero(t, b.reserve())
	assert.Zero(t, b.reserve())
	assert.Equal(t, time.Second, b.reserve())

	b.refund()
	assert.Equal(t, time.Second, b.reserve())

	clock = t0.Add(10 * time.Second)
	assert.Zero(t, b.reserve())
	assert.Nil(t, newBucket(0, 5))
}
