package types

import "errors"

// Store is the call surface typed wrappers (users, listings, bookings,
// messages) build on. Every operation on a collection is serialized against
// all other operations on the same collection.
type Store interface {
	// Initialize creates an empty file with a header row for every catalog
	// collection that has no file yet. Calling it again is a no-op.
	Initialize() error

	// Cleanup removes the files of every catalog collection. Missing files
	// are not an error.
	Cleanup() error

	// Create appends data to the collection, assigning id, createdAt and
	// updatedAt when absent. Returns the record as a later read sees it.
	Create(collection string, data Record) (Record, error)

	// FindMany returns the records matching filter in file order. A nil
	// filter matches every record.
	FindMany(collection string, filter Filter) ([]Record, error)

	// FindUnique returns the first record matching filter, or nil when
	// none does.
	FindUnique(collection string, filter Filter) (Record, error)

	// Update merges patch over the first record matching filter and
	// refreshes updatedAt. Returns ErrNotFound when nothing matches.
	Update(collection string, filter Filter, patch Record) (Record, error)

	// Delete removes the first record matching filter and returns it as
	// it was. Returns ErrNotFound when nothing matches.
	Delete(collection string, filter Filter) (Record, error)

	// Count returns the number of records matching filter.
	Count(collection string, filter Filter) (int, error)
}

// Record operation errors.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidCollection = errors.New("invalid collection name")
	ErrInvalidData       = errors.New("invalid entity data")
	ErrDuplicateID       = errors.New("duplicate entity ID")
	ErrInvalidFilter     = errors.New("invalid filter value type")
	ErrHeaderlessUnknown = errors.New("collection has no declared fields for headerless mode")
)
