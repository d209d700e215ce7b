package flatfile

import (
	"errors"

	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// Collections returns the names of collections that have a file in the
// data directory, sorted.
func (s *Store) Collections() ([]string, error) {
	return s.files.list()
}

// Initialize creates a header-only file for every catalog collection that
// has no file yet.
func (s *Store) Initialize() error {
	var errs []error
	for _, spec := range types.Catalog {
		created, err := s.initializeOne(spec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if created {
			s.logger.Debug("collection initialized", "collection", spec.Name)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) initializeOne(spec types.CollectionSpec) (bool, error) {
	release := s.guard.acquire(spec.Name)
	defer release()
	return s.files.initialize(spec)
}

// Cleanup removes the file of every catalog collection.
func (s *Store) Cleanup() error {
	var errs []error
	for _, spec := range types.Catalog {
		if err := s.removeOne(spec.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) removeOne(collection string) error {
	release := s.guard.acquire(collection)
	defer release()
	return s.files.remove(collection)
}
