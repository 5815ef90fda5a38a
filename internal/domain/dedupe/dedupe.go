// Package dedupe defines the seen-set contract used to suppress repeat
// notification of already-processed results.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// SeenSet is a per-athlete persistent membership set of result keys.
// Entries are never removed: seen results stay seen permanently, and the key
// space is bounded by real-world competition volume.
type SeenSet interface {
	// Seen reports whether the result key was already recorded for the athlete.
	Seen(ctx context.Context, athleteID, key string) bool

	// MarkSeen records the result key for the athlete. Recording an already
	// seen key is a no-op.
	MarkSeen(ctx context.Context, athleteID, key string)

	// Load hydrates the set from the backing store. A failed Load must abort
	// the batch: proceeding with a wiped set would re-notify everything.
	Load(ctx context.Context) error

	// Persist flushes recorded keys to the backing store. On failure the
	// in-memory state is retained so the caller can retry.
	Persist(ctx context.Context) error

	// Size returns the number of recorded keys across all athletes.
	Size() int64
}

// ResultKey derives the deterministic, run-stable identifier for one result.
// The source's result id is preferred; when absent the event identity plus
// mark text stands in, so two identical marks at one meet in different
// events still get distinct keys.
func ResultKey(meetID, resultID, eventKey, markText string) string {
	if resultID != "" {
		return meetID + "_" + resultID
	}
	return meetID + "_" + eventKey + "_" + markText
}

// InMemorySeenSet implements SeenSet with per-athlete maps. It is safe for
// concurrent use by athlete workers. Load and Persist are no-ops; durable
// adapters embed it and layer storage on top.
type InMemorySeenSet struct {
	mu   sync.RWMutex
	seen map[string]map[string]struct{}
	size atomic.Int64
}

// NewInMemorySeenSet creates an empty in-memory seen-set.
func NewInMemorySeenSet() *InMemorySeenSet {
	return &InMemorySeenSet{seen: make(map[string]map[string]struct{})}
}

// Seen reports whether the key was recorded for the athlete.
func (s *InMemorySeenSet) Seen(_ context.Context, athleteID, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[athleteID][key]
	return ok
}

// MarkSeen records the key for the athlete.
func (s *InMemorySeenSet) MarkSeen(_ context.Context, athleteID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys, ok := s.seen[athleteID]
	if !ok {
		keys = make(map[string]struct{})
		s.seen[athleteID] = keys
	}
	if _, dup := keys[key]; dup {
		return
	}
	keys[key] = struct{}{}
	s.size.Add(1)
}

// Load is a no-op for the in-memory set.
func (s *InMemorySeenSet) Load(context.Context) error { return nil }

// Persist is a no-op for the in-memory set.
func (s *InMemorySeenSet) Persist(context.Context) error { return nil }

// Size returns the number of recorded keys across all athletes.
func (s *InMemorySeenSet) Size() int64 {
	return s.size.Load()
}

// Snapshot copies the full state, for serialization by durable adapters.
func (s *InMemorySeenSet) Snapshot() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string, len(s.seen))
	for athlete, keys := range s.seen {
		list := make([]string, 0, len(keys))
		for k := range keys {
			list = append(list, k)
		}
		out[athlete] = list
	}
	return out
}

// Restore replaces the full state, for hydration by durable adapters.
func (s *InMemorySeenSet) Restore(state map[string][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]map[string]struct{}, len(state))
	var total int64
	for athlete, list := range state {
		keys := make(map[string]struct{}, len(list))
		for _, k := range list {
			keys[k] = struct{}{}
		}
		s.seen[athlete] = keys
		total += int64(len(keys))
	}
	s.size.Store(total)
}
