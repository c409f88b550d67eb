package memo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRememberCachesPerScope(t *testing.T) {
	m := New(NewMemoryBackend(), time.Minute)
	ctx := context.Background()

	calls := 0
	load := func(ctx context.Context) (int64, error) {
		calls++
		return int64(40 + calls), nil
	}

	v, err := Remember(ctx, m, "session-a", "count_in_care", load)
	require.NoError(t, err)
	assert.Equal(t, int64(41), v)

	v, err = Remember(ctx, m, "session-a", "count_in_care", load)
	require.NoError(t, err)
	assert.Equal(t, int64(41), v)
	assert.Equal(t, 1, calls)

	// A different session gets its own value
	v, err = Remember(ctx, m, "session-b", "count_in_care", load)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
	assert.Equal(t, 2, calls)
}

func TestRememberDoesNotStoreErrors(t *testing.T) {
	m := New(NewMemoryBackend(), time.Minute)
	ctx := context.Background()
	errWarehouse := errors.New("warehouse unavailable")

	_, err := Remember(ctx, m, "s", "k", func(ctx context.Context) (string, error) {
		return "", errWarehouse
	})
	require.ErrorIs(t, err, errWarehouse)

	v, err := Remember(ctx, m, "s", "k", func(ctx context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestRememberStructValues(t *testing.T) {
	type summary struct {
		Day   time.Time
		Count int64
	}
	m := New(NewMemoryBackend(), time.Minute)
	ctx := context.Background()
	want := summary{Day: time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC), Count: 7}

	_, err := Remember(ctx, m, "s", "summary", func(ctx context.Context) (summary, error) { return want, nil })
	require.NoError(t, err)

	got, err := Remember(ctx, m, "s", "summary", func(ctx context.Context) (summary, error) {
		t.Fatal("loader called on a hit")
		return summary{}, nil
	})
	require.NoError(t, err)
	assert.True(t, want.Day.Equal(got.Day))
	assert.Equal(t, want.Count, got.Count)
}

func TestRememberExpires(t *testing.T) {
	backend := NewMemoryBackend()
	now := time.Date(2025, 3, 19, 8, 0, 0, 0, time.UTC)
	backend.now = func() time.Time { return now }
	m := New(backend, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func(ctx context.Context) (int, error) { calls++; return calls, nil }

	_, _ = Remember(ctx, m, "s", "k", load)
	now = now.Add(2 * time.Minute)
	v, err := Remember(ctx, m, "s", "k", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

// missCounter counts lookups of one entry that found nothing.
type missCounter struct {
	Backend
	key    string
	misses atomic.Int32
}

func (b *missCounter) Get(key string) ([]byte, error) {
	data, err := b.Backend.Get(key)
	if key == b.key && data == nil {
		b.misses.Add(1)
	}
	return data, err
}

func TestRememberSharesConcurrentMisses(t *testing.T) {
	backend := &missCounter{Backend: NewMemoryBackend(), key: entryKey("s", "k")}
	m := New(backend, time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(ctx context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	}

	const callers = 5
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Remember(ctx, m, "s", "k", load)
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}

	// Every caller has missed and is about to join the load
	require.Eventually(t, func() bool { return backend.misses.Load() == callers }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestForgetDuringLoadDropsStaleValue(t *testing.T) {
	m := New(NewMemoryBackend(), time.Minute)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan string)
	go func() {
		v, _ := Remember(ctx, m, "s", "k", func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
		done <- v
	}()

	<-started
	require.NoError(t, m.Forget("s"))
	close(release)
	assert.Equal(t, "stale", <-done)

	v, err := Remember(ctx, m, "s", "k", func(ctx context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestRememberAfterForgetDoesNotJoinOldLoad(t *testing.T) {
	m := New(NewMemoryBackend(), time.Minute)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	go func() {
		_, _ = Remember(ctx, m, "s", "k", func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	require.NoError(t, m.Forget("s"))

	v, err := Remember(ctx, m, "s", "k", func(ctx context.Context) (string, error) { return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
}

func TestCancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	m := New(NewMemoryBackend(), time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	load := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "value", nil
	}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error)
	go func() {
		_, err := Remember(leaderCtx, m, "s", "k", load)
		leaderErr <- err
	}()
	<-started

	follower := make(chan string)
	go func() {
		v, err := Remember(context.Background(), m, "s", "k", load)
		assert.NoError(t, err)
		follower <- v
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(release)
	assert.Equal(t, "value", <-follower)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRememberWithDoneContextSkipsLoad(t *testing.T) {
	m := New(NewMemoryBackend(), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Remember(ctx, m, "s", "k", func(ctx context.Context) (int, error) {
		t.Fatal("loader called with a done context")
		return 0, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestForget(t *testing.T) {
	backend := NewMemoryBackend()
	m := New(backend, time.Minute)
	ctx := context.Background()

	for _, k := range []string{"a", "b"} {
		_, err := Remember(ctx, m, "s1", k, func(ctx context.Context) (string, error) { return k, nil })
		require.NoError(t, err)
	}
	_, err := Remember(ctx, m, "s2", "a", func(ctx context.Context) (string, error) { return "other", nil })
	require.NoError(t, err)

	require.NoError(t, m.Forget("s1"))

	calls := 0
	v, err := Remember(ctx, m, "s1", "a", func(ctx context.Context) (string, error) { calls++; return "fresh", nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
	assert.Equal(t, 1, calls)

	// Other sessions are untouched
	v, err = Remember(ctx, m, "s2", "a", func(ctx context.Context) (string, error) { return "reloaded", nil })
	require.NoError(t, err)
	assert.Equal(t, "other", v)

	// Forgetting an unknown scope is not an error
	assert.NoError(t, m.Forget("missing"))
}

func TestMemoryBackendSweep(t *testing.T) {
	backend := NewMemoryBackend()
	now := time.Date(2025, 3, 19, 8, 0, 0, 0, time.UTC)
	backend.now = func() time.Time { return now }

	require.NoError(t, backend.Set("short", []byte("1"), time.Second))
	require.NoError(t, backend.Set("long", []byte("2"), time.Hour))
	require.NoError(t, backend.Set("forever", []byte("3"), 0))

	now = now.Add(time.Minute)
	assert.Equal(t, 1, backend.Sweep())
	assert.Equal(t, 2, backend.Len())

	v, err := backend.Get("forever")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), v)
}
