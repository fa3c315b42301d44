package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/metrics"
)

// SnapshotStore is an in-memory Store. Every ReplaceAll publishes a new
// immutable Population; readers that already hold the previous one finish
// against it undisturbed.
type SnapshotStore struct {
	// current is the published snapshot, nil until the first load.
	current atomic.Pointer[model.Population]

	// mu serializes writers so generations are strictly increasing.
	mu         sync.Mutex
	generation uint64
	hooks      []func(*model.Population)
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current population, or nil before the first load.
func (s *SnapshotStore) Snapshot() *model.Population {
	return s.current.Load()
}

// ReplaceAll builds the next generation from players and publishes it.
func (s *SnapshotStore) ReplaceAll(ctx context.Context, players []model.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	s.mu.Lock()
	pop, err := model.NewPopulation(s.generation+1, players)
	if err != nil {
		s.mu.Unlock()
		metrics.RecordErrorByComponent("repository", "invalid_population")
		return fmt.Errorf("build snapshot: %w", err)
	}
	s.generation = pop.Generation()
	s.current.Store(pop)
	hooks := s.hooks
	s.mu.Unlock()

	metrics.RecordRepositoryReplaceDuration("snapshot", float64(time.Since(start).Milliseconds()))
	metrics.UpdatePopulation(pop.Len(), pop.Generation())
	for _, fn := range hooks {
		fn(pop)
	}
	return nil
}

// Get returns a copy of the player. The attribute map is shared with the
// snapshot and must be treated as read-only.
func (s *SnapshotStore) Get(ctx context.Context, id int) (model.Player, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency("snapshot", float64(time.Since(start).Microseconds())/1000)
	}()

	p, ok := s.Snapshot().Get(id)
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Player{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return *p, nil
}

// All returns the players of the current snapshot ordered by id.
func (s *SnapshotStore) All(ctx context.Context) ([]model.Player, error) {
	return s.Snapshot().Players(), nil
}

// Count returns the size of the current snapshot.
func (s *SnapshotStore) Count(ctx context.Context) (int, error) {
	return s.Snapshot().Len(), nil
}
