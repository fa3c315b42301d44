// Package repository holds the player stores: an in-memory snapshot store
// that serves queries and an on-disk SQLite store that persists imports.
package repository

import (
	"context"

	"github.com/okian/scout/internal/domain/model"
)

// Store provides read/write access to the player table.
type Store interface {
	// ReplaceAll swaps the full contents of the store for players.
	ReplaceAll(ctx context.Context, players []model.Player) error

	// Get returns the player with id.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id int) (model.Player, error)

	// All returns every player ordered by id.
	All(ctx context.Context) ([]model.Player, error)

	// Count returns the number of stored players.
	Count(ctx context.Context) (int, error)
}
