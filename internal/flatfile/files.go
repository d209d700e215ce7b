package flatfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// table is the decoded content of one collection file.
type table struct {
	columns []string       // Header order; later records may add columns.
	rows    []types.Record // File order.
}

// files reads and writes whole collection files under the data directory.
type files struct {
	cfg    types.Config
	logger *slog.Logger
}

var collectionName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validateCollection rejects names that cannot be used as a file name
// inside the data directory.
func validateCollection(name string) error {
	if !collectionName.MatchString(name) {
		return fmt.Errorf("%w: %q", types.ErrInvalidCollection, name)
	}
	return nil
}

// path returns the file backing collection.
func (f *files) path(collection string) string {
	return filepath.Join(f.cfg.DataDir, collection+types.FileExtension)
}

// declared returns the catalog field list used when files carry no header.
func (f *files) declared(collection string) ([]string, error) {
	spec, ok := types.LookupCollection(collection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrHeaderlessUnknown, collection)
	}
	return spec.Fields, nil
}

// emptyTable is what read returns for a missing or blank file.
func (f *files) emptyTable(collection string) (*table, error) {
	if f.cfg.Header {
		return &table{}, nil
	}
	cols, err := f.declared(collection)
	if err != nil {
		return nil, err
	}
	return &table{columns: cols}, nil
}

// read loads every record of collection. A missing or whitespace-only file
// is an empty table.
func (f *files) read(collection string) (*table, error) {
	data, err := os.ReadFile(f.path(collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return f.emptyTable(collection)
		}
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return f.emptyTable(collection)
	}

	rows, err := parseRows(data, f.cfg.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}

	t := &table{}
	if f.cfg.Header {
		t.columns, rows = rows[0], rows[1:]
	} else if t.columns, err = f.declared(collection); err != nil {
		return nil, err
	}

	t.rows = make([]types.Record, 0, len(rows))
	for _, row := range rows {
		t.rows = append(t.rows, zipRow(t.columns, row))
	}
	return t, nil
}

// zipRow pairs cells with column names. Missing trailing cells read as null.
func zipRow(columns, row []string) types.Record {
	rec := make(types.Record, len(columns))
	for i, col := range columns {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		rec[col] = decodeCell(cell)
	}
	return rec
}

// layout returns the columns t is written with: the existing header order
// followed by fields that first appear in later records. Without headers
// the declared fields are the only columns.
func (f *files) layout(collection string, t *table) ([]string, error) {
	if !f.cfg.Header {
		return f.declared(collection)
	}
	columns := slices.Clone(t.columns)
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[c] = true
	}
	for _, rec := range t.rows {
		for _, k := range rec.Keys() {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return columns, nil
}

// write replaces the content of collection with t and returns the columns
// used, so callers can see records exactly as a later read will.
func (f *files) write(collection string, t *table) ([]string, error) {
	columns, err := f.layout(collection, t)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(t.rows)+1)
	if f.cfg.Header {
		rows = append(rows, columns)
	}
	for _, rec := range t.rows {
		if dropped := extraFields(columns, rec); len(dropped) > 0 {
			f.logger.Warn("fields dropped on write", "collection", collection, "fields", strings.Join(dropped, ","))
		}
		row := make([]string, len(columns))
		for i, col := range columns {
			cell, err := encodeCell(rec[col])
			if err != nil {
				return nil, fmt.Errorf("encoding %s.%s: %w", collection, col, err)
			}
			row[i] = cell
		}
		rows = append(rows, row)
	}

	data, err := formatRows(rows, f.cfg.Delimiter, f.cfg.QuoteAll)
	if err != nil {
		return nil, fmt.Errorf("writing %s: %w", collection, err)
	}
	if err := writeFile(f.path(collection), data); err != nil {
		return nil, fmt.Errorf("writing %s: %w", collection, err)
	}
	return columns, nil
}

// extraFields lists record fields that have no column, in sorted order.
func extraFields(columns []string, rec types.Record) []string {
	var extra []string
	for k := range rec {
		if !slices.Contains(columns, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}

// initialize writes a header-only file for spec when the collection has no
// file yet. It reports whether a file was created.
func (f *files) initialize(spec types.CollectionSpec) (bool, error) {
	_, err := os.Stat(f.path(spec.Name))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", spec.Name, err)
	}
	if _, err := f.write(spec.Name, &table{columns: spec.Fields}); err != nil {
		return false, err
	}
	return true, nil
}

// remove deletes the file backing collection. A missing file is not an error.
func (f *files) remove(collection string) error {
	if err := os.Remove(f.path(collection)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", collection, err)
	}
	return nil
}

// list returns the collections that have a file in the data directory.
func (f *files) list() ([]string, error) {
	entries, err := os.ReadDir(f.cfg.DataDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", f.cfg.DataDir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(e.Name(), types.FileExtension)
		if !ok || !collectionName.MatchString(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// writeFile replaces path with data using the temp-file, fsync, rename
// pattern, so readers never observe a half-written file.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// reload passes rec through the cell codec and the row grammar with the
// written columns, giving the record a later read returns. The grammar is
// not lossless: CRLF inside a quoted cell reads back as LF.
func (f *files) reload(columns []string, rec types.Record) (types.Record, error) {
	row := make([]string, len(columns))
	for i, col := range columns {
		cell, err := encodeCell(rec[col])
		if err != nil {
			return nil, err
		}
		row[i] = cell
	}
	data, err := formatRows([][]string{row}, f.cfg.Delimiter, f.cfg.QuoteAll)
	if err != nil {
		return nil, err
	}
	rows, err := parseRows(data, f.cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("reload: %d rows parsed from one record", len(rows))
	}
	return zipRow(columns, rows[0]), nil
}
