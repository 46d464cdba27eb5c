// Package history keeps a bounded usage time series per account, persisted
// through a durable key-value store.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/quotawatch/quotawatch/pkg/kv"
)

// storeKey is the single well-known key holding the whole account→series map.
const storeKey = "usage_history"

// MaxPointsPerAccount is the hard cap on one account's series. Time pruning
// runs first; the cap then keeps only the most recent points.
const MaxPointsPerAccount = 1000

// DataPoint is one usage observation in an account's series. Immutable.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Remaining float64   `json:"remaining"`
	Total     float64   `json:"total"`
}

// Store holds the per-account series in memory and writes the full map back
// to the durable store on every mutation. The serialize-everything strategy
// trades partial-write protection for simplicity; the data is a regenerable
// cache of recent usage.
type Store struct {
	kv          kv.Store
	retentionFn func() int // retention window in days, read fresh per write

	mu     sync.Mutex
	series map[string][]DataPoint

	now func() time.Time
}

// NewStore loads the persisted history once and serves it from memory
// afterwards. retentionFn is consulted on every write so configuration
// changes apply without a restart. A failed load is logged and treated as
// an empty history, not a fatal condition.
func NewStore(ctx context.Context, store kv.Store, retentionFn func() int) *Store {
	s := &Store{
		kv:          store,
		retentionFn: retentionFn,
		series:      make(map[string][]DataPoint),
		now:         time.Now,
	}

	data, err := store.Get(ctx, storeKey)
	if err != nil {
		if err != kv.ErrNotFound {
			log.Printf("Failed to load usage history, starting empty: %v", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.series); err != nil {
		log.Printf("Failed to decode usage history, starting empty: %v", err)
		s.series = make(map[string][]DataPoint)
	}
	return s
}

// AddDataPoint appends an observation for accountID stamped with the current
// time, prunes the series, and persists the store. Pruning is unconditional:
// the retention window and the count cap both apply on every write.
func (s *Store) AddDataPoint(ctx context.Context, accountID string, remaining, total float64) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	points := append(s.series[accountID], DataPoint{
		Timestamp: now,
		Remaining: remaining,
		Total:     total,
	})
	s.series[accountID] = prune(points, now, s.retentionFn())

	return s.persistLocked(ctx)
}

// GetHistory returns a copy of the account's series, empty for unknown
// accounts.
func (s *Store) GetHistory(accountID string) []DataPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	points := s.series[accountID]
	out := make([]DataPoint, len(points))
	copy(out, points)
	return out
}

// Accounts returns the ids that currently have history.
func (s *Store) Accounts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.series))
	for id := range s.series {
		out = append(out, id)
	}
	return out
}

// ClearHistory removes one account's series and persists immediately.
// Clearing an unknown account is a no-op beyond the persist.
func (s *Store) ClearHistory(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.series, accountID)
	return s.persistLocked(ctx)
}

// ClearAll removes every series and persists immediately.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = make(map[string][]DataPoint)
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.series)
	if err != nil {
		return fmt.Errorf("failed to encode usage history: %w", err)
	}
	if err := s.kv.Set(ctx, storeKey, data); err != nil {
		return fmt.Errorf("failed to persist usage history: %w", err)
	}
	return nil
}

// prune drops points older than the retention window, then tail-slices to the
// count cap. Points are appended in timestamp order, so both cuts remove only
// from the head.
func prune(points []DataPoint, now time.Time, retentionDays int) []DataPoint {
	if retentionDays > 0 {
		cutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
		firstKept := len(points)
		for i, p := range points {
			if p.Timestamp.After(cutoff) {
				firstKept = i
				break
			}
		}
		points = points[firstKept:]
	}
	if len(points) > MaxPointsPerAccount {
		points = points[len(points)-MaxPointsPerAccount:]
	}
	return points
}
