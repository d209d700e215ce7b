// Package flatfile provides the public API for the flat-file record store.
// This package exposes the factory function while keeping the engine
// internal.
package flatfile

import (
	"log/slog"

	"github.com/mesh-intelligence/bazaar/internal/flatfile"
	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// NewStore creates a store rooted at config.DataDir, creating the directory
// if it does not exist.
//
// Example:
//
//	store, err := flatfile.NewStore(types.DefaultConfig(".bazaar-db"), nil)
//	if err != nil {
//	    return err
//	}
//	if err := store.Initialize(); err != nil {
//	    return err
//	}
//	listing, err := store.Create(types.ListingsCollection, types.Record{
//	    "title": types.String("Tent"),
//	    "price": types.Int(50),
//	})
func NewStore(config types.Config, logger *slog.Logger) (types.Store, error) {
	var opts []flatfile.Option
	if logger != nil {
		opts = append(opts, flatfile.WithLogger(logger))
	}
	return flatfile.NewStore(config, opts...)
}
