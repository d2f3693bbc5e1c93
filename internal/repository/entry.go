package repository

import (
	"context"

	"docintake/internal/model"
)

// EntryRepository persists per-candidate registry entries and removals.
// Strictly persistence; ordering and visibility rules belong to the registry.
type EntryRepository interface {
	// Append stores e for its candidate and returns it with Seq and CreatedAt
	// set. Appending an existing document id replaces its document and keeps
	// its position.
	Append(ctx context.Context, e *model.RegistryEntry) (*model.RegistryEntry, error)

	// List returns a candidate's entries in insertion order.
	List(ctx context.Context, candidateID model.ID) ([]model.RegistryEntry, error)

	// Find returns one entry or ErrNotFound.
	Find(ctx context.Context, candidateID, documentID model.ID) (*model.RegistryEntry, error)

	// Replace swaps a candidate's entries for entries, in the given order.
	Replace(ctx context.Context, candidateID model.ID, entries []model.RegistryEntry) error

	// Delete removes one entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, candidateID, documentID model.ID) error

	// AddRemoval records r. Recording the same document twice is not an error.
	AddRemoval(ctx context.Context, r model.Removal) error

	// Removals returns a candidate's recorded removals.
	Removals(ctx context.Context, candidateID model.ID) ([]model.Removal, error)
}
