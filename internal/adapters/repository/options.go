package repository

import "github.com/okian/scout/internal/domain/model"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithPublishHook registers fn to run after each new snapshot is published.
func WithPublishHook(fn func(*model.Population)) Option {
	return func(s *SnapshotStore) {
		if fn != nil {
			s.hooks = append(s.hooks, fn)
		}
	}
}

// WithInitial seeds the store with a first snapshot.
func WithInitial(pop *model.Population) Option {
	return func(s *SnapshotStore) {
		if pop != nil {
			s.current.Store(pop)
			s.generation = pop.Generation()
		}
	}
}

// SQLiteOption applies a configuration option to the SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithMaxOpenConns limits the connection pool. SQLite serializes writers, so
// the default is a single connection.
func WithMaxOpenConns(n int) SQLiteOption {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}
