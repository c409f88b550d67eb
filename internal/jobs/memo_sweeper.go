// Package jobs runs background maintenance loops.
package jobs

import (
	"context"
	"log"
	"time"
)

// Sweeper is a store whose expired entries must be purged explicitly.
type Sweeper interface {
	Sweep() int
}

// MemoSweeper periodically purges expired memo entries from an in-memory
// backend. Redis expires keys by itself and needs no sweeper.
type MemoSweeper struct {
	store    Sweeper
	interval time.Duration
}

// NewMemoSweeper creates a new memo sweeper.
func NewMemoSweeper(store Sweeper, interval time.Duration) *MemoSweeper {
	return &MemoSweeper{store: store, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *MemoSweeper) Start(ctx context.Context) {
	log.Printf("Memo sweeper started (interval: %v)", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Memo sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoSweeper) sweep() int {
	removed := s.store.Sweep()
	if removed > 0 {
		log.Printf("Memo sweeper: removed %d expired entries", removed)
	}
	return removed
}
