// Package orm defines the narrow repository boundary the framework depends
// on. The framework never maps entities itself; it only requires lookup,
// save, update and delete over generic records, so any data layer that can
// satisfy Repository can back it.
package orm

import (
	"context"
	"errors"
)

// ErrNotFound is returned by FindOne when no record matches the filter.
var ErrNotFound = errors.New("orm: record not found")

// Record is a generic row representation keyed by column name.
type Record = map[string]any

// Repository is the minimal persistence contract per entity.
type Repository interface {
	// FindOne returns the first record matching all filter columns.
	// Returns ErrNotFound if nothing matches.
	FindOne(ctx context.Context, filter Record) (Record, error)

	// Find returns all records of the entity.
	Find(ctx context.Context) ([]Record, error)

	// Save inserts a new record.
	Save(ctx context.Context, entity Record) error

	// Update patches all records matching the filter.
	Update(ctx context.Context, filter, patch Record) error

	// Delete removes all records matching the filter.
	Delete(ctx context.Context, filter Record) error
}

// Connection hands out repository handles by entity name.
type Connection interface {
	// Repository returns the standard repository for an entity.
	Repository(entity string) Repository

	// TreeRepository returns the hierarchy-aware repository for an entity.
	TreeRepository(entity string) Repository

	// CustomRepository returns a repository registered under a custom name,
	// or nil if none was registered.
	CustomRepository(name string) Repository
}
