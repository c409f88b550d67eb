// Package memo keeps warehouse results per browser session so that moving
// between pages does not query the warehouse again.
package memo

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"caredash/internal/metrics"
)

// Backend stores encoded values with an expiry. The Redis storage used for
// sessions satisfies it.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
	Delete(key string) error
}

// Memo memoizes values per scope (a session ID) and key.
type Memo struct {
	backend     Backend
	ttl         time.Duration
	loadTimeout time.Duration
	group       singleflight.Group
	mu          sync.Mutex // serializes index and generation updates
}

// DefaultLoadTimeout bounds a shared load once the caller that started it
// has gone away.
const DefaultLoadTimeout = time.Minute

// New creates a memo on top of backend. Entries expire after ttl.
func New(backend Backend, ttl time.Duration) *Memo {
	return &Memo{backend: backend, ttl: ttl, loadTimeout: DefaultLoadTimeout}
}

func entryKey(scope, key string) string {
	return "memo:" + scope + ":" + key
}

func indexKey(scope string) string {
	return "memo:" + scope + ":_keys"
}

// generationKey holds a token that changes on every Forget. Loads that
// started under an older token do not store their result.
func generationKey(scope string) string {
	return "memo:" + scope + ":_gen"
}

// Remember returns the value stored for key in scope, or calls fn and stores
// its result. Errors are returned to the caller and never stored.
// Concurrent misses for the same entry share one call to fn, which runs
// detached from the caller's cancellation so one aborted request does not
// fail the others. A caller whose ctx ends stops waiting with ctx.Err().
func Remember[T any](ctx context.Context, m *Memo, scope, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	k := entryKey(scope, key)

	if data, err := m.backend.Get(k); err == nil && data != nil {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			metrics.RecordMemoLookup(true)
			return v, nil
		}
		slog.Warn("discarding undecodable memo entry", "key", k)
	}
	metrics.RecordMemoLookup(false)

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	gen, err := m.generation(scope)
	if err != nil {
		slog.Warn("failed to read memo generation", "scope", scope, "error", err)
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(k+"@"+gen, func() (any, error) {
		ctx, cancel := context.WithTimeout(loadCtx, m.loadTimeout)
		defer cancel()

		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(v); err != nil {
			slog.Warn("memo value not encodable", "key", k, "error", err)
		} else if err := m.store(scope, gen, k, data); err != nil {
			slog.Warn("failed to store memo entry", "key", k, "error", err)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// store writes an entry and records it in the scope's index. Nothing is
// written when the scope was forgotten after the load started.
func (m *Memo) store(scope, gen, k string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.generation(scope)
	if err != nil {
		return err
	}
	if current != gen {
		slog.Debug("dropping memo entry loaded before refresh", "key", k)
		return nil
	}

	keys, err := m.index(scope)
	if err != nil {
		return err
	}
	if !contains(keys, k) {
		keys = append(keys, k)
	}
	encoded, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	if err := m.backend.Set(indexKey(scope), encoded, m.ttl); err != nil {
		return err
	}
	return m.backend.Set(k, data, m.ttl)
}

// Forget drops every entry of a scope and invalidates loads still running.
func (m *Memo) Forget(scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.backend.Set(generationKey(scope), []byte(uuid.NewString()), m.ttl); err != nil {
		return err
	}

	keys, err := m.index(scope)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := m.backend.Delete(k); err != nil {
			return err
		}
	}
	return m.backend.Delete(indexKey(scope))
}

func (m *Memo) generation(scope string) (string, error) {
	data, err := m.backend.Get(generationKey(scope))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *Memo) index(scope string) ([]string, error) {
	data, err := m.backend.Get(indexKey(scope))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		// A corrupt index only loses the ability to forget; start over
		return nil, nil
	}
	return keys, nil
}

func contains(keys []string, k string) bool {
	for _, existing := range keys {
		if existing == k {
			return true
		}
	}
	return false
}
