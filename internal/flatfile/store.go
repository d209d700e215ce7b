// Package flatfile implements a schema-flexible record store on plain CSV
// files: one file per collection, every mutation rewrites the whole file.
// It stands in for a relational database in single-process deployments.
//
// Operations on one collection are serialized by a per-collection guard
// held across the full read-modify-write cycle. Operations on different
// collections run in parallel.
package flatfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// Store implements types.Store over CSV files in a data directory.
type Store struct {
	cfg    types.Config
	files  *files
	guard  *guard
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

var _ types.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the time source for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the function generating record ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore validates cfg, creates the data directory if needed and returns
// a ready store. Every store owns its own guard table.
func NewStore(cfg types.Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	s := &Store{
		cfg:    cfg,
		guard:  newGuard(),
		logger: slog.Default(),
		now:    time.Now,
		newID:  generateUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("data_dir", cfg.DataDir)
	s.files = &files{cfg: cfg, logger: s.logger}
	return s, nil
}

// Config returns the configuration the store was built with.
func (s *Store) Config() types.Config {
	return s.cfg
}

// generateUUID generates a new UUID v7 for record ids.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// timestamp returns the current time at the precision cells store.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// nextUpdatedAt returns a timestamp strictly after prev when prev is a time.
func (s *Store) nextUpdatedAt(prev types.Value) time.Time {
	now := s.timestamp()
	if t, ok := prev.AsTime(); ok && !now.After(t) {
		return t.Add(time.Millisecond)
	}
	return now
}

// Create appends data to collection. Missing id, createdAt and updatedAt
// fields are filled in; supplied ones are kept.
func (s *Store) Create(collection string, data types.Record) (types.Record, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	release := s.guard.acquire(collection)
	defer release()

	t, err := s.files.read(collection)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", collection, err)
	}

	rec := data.Clone()
	if rec == nil {
		rec = types.Record{}
	}
	if blankCell(rec[types.FieldID]) {
		rec[types.FieldID] = types.String(s.newID())
	}
	if idTaken(t.rows, rec[types.FieldID], -1) {
		return nil, fmt.Errorf("create %s: %w: %s", collection, types.ErrDuplicateID, rec[types.FieldID].GoString())
	}
	now := types.Time(s.timestamp())
	if blankCell(rec[types.FieldCreatedAt]) {
		rec[types.FieldCreatedAt] = now
	}
	if blankCell(rec[types.FieldUpdatedAt]) {
		rec[types.FieldUpdatedAt] = now
	}

	t.rows = append(t.rows, rec)
	columns, err := s.files.write(collection, t)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", collection, err)
	}
	return s.files.reload(columns, rec)
}

// FindMany returns records matching filter in file order. A read failure is
// logged and reported as an empty collection.
func (s *Store) FindMany(collection string, filter types.Filter) ([]types.Record, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.load(collection)
	if err != nil {
		return nil, err
	}

	out := make([]types.Record, 0, len(rows))
	for _, rec := range rows {
		if rec.Matches(filter) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// FindUnique returns the first record matching filter, or nil.
func (s *Store) FindUnique(collection string, filter types.Filter) (types.Record, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	if i := findIndex(rows, filter); i >= 0 {
		return rows[i], nil
	}
	return nil, nil
}

// Count returns the number of records matching filter.
func (s *Store) Count(collection string, filter types.Filter) (int, error) {
	recs, err := s.FindMany(collection, filter)
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Update merges patch over the first record matching filter. Fields absent
// from patch keep their values; updatedAt always moves forward.
func (s *Store) Update(collection string, filter types.Filter, patch types.Record) (types.Record, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	release := s.guard.acquire(collection)
	defer release()

	t, err := s.files.read(collection)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", collection, err)
	}
	i := findIndex(t.rows, filter)
	if i < 0 {
		return nil, fmt.Errorf("update %s: %w", collection, types.ErrNotFound)
	}

	rec := t.rows[i]
	if id, ok := patch[types.FieldID]; ok {
		if blankCell(id) {
			return nil, fmt.Errorf("update %s: %w: id cannot be cleared", collection, types.ErrInvalidData)
		}
		if idTaken(t.rows, id, i) {
			return nil, fmt.Errorf("update %s: %w: %s", collection, types.ErrDuplicateID, id.GoString())
		}
	}
	prev := rec[types.FieldUpdatedAt]
	for k, v := range patch {
		rec[k] = v.Clone()
	}
	rec[types.FieldUpdatedAt] = types.Time(s.nextUpdatedAt(prev))

	columns, err := s.files.write(collection, t)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", collection, err)
	}
	return s.files.reload(columns, rec)
}

// Delete removes the first record matching filter and returns it as it was
// before removal.
func (s *Store) Delete(collection string, filter types.Filter) (types.Record, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	release := s.guard.acquire(collection)
	defer release()

	t, err := s.files.read(collection)
	if err != nil {
		return nil, fmt.Errorf("delete %s: %w", collection, err)
	}
	i := findIndex(t.rows, filter)
	if i < 0 {
		return nil, fmt.Errorf("delete %s: %w", collection, types.ErrNotFound)
	}

	removed := t.rows[i]
	t.rows = append(t.rows[:i:i], t.rows[i+1:]...)
	if _, err := s.files.write(collection, t); err != nil {
		return nil, fmt.Errorf("delete %s: %w", collection, err)
	}
	return removed, nil
}

// load reads collection under its guard. I/O and parse failures degrade
// to no records; only a headerless collection missing from the catalog is
// reported.
func (s *Store) load(collection string) ([]types.Record, error) {
	release := s.guard.acquire(collection)
	defer release()

	t, err := s.files.read(collection)
	if errors.Is(err, types.ErrHeaderlessUnknown) {
		return nil, err
	}
	if err != nil {
		s.logger.Warn("read failed, treating collection as empty", "collection", collection, "err", err)
		return nil, nil
	}
	return t.rows, nil
}

// findIndex returns the index of the first record matching filter, or -1.
func findIndex(rows []types.Record, filter types.Filter) int {
	for i, rec := range rows {
		if rec.Matches(filter) {
			return i
		}
	}
	return -1
}

// idTaken reports whether a record other than rows[skip] already holds id.
// Ids compare by cell text, so "7" and 7 collide as they would after a
// reload.
func idTaken(rows []types.Record, id types.Value, skip int) bool {
	want, err := encodeCell(id)
	if err != nil {
		return false
	}
	for i, rec := range rows {
		if i == skip {
			continue
		}
		if got, err := encodeCell(rec[types.FieldID]); err == nil && got == want {
			return true
		}
	}
	return false
}

// blankCell reports whether v is written as an empty cell, which reads
// back as null.
func blankCell(v types.Value) bool {
	cell, err := encodeCell(v)
	return err == nil && cell == ""
}
