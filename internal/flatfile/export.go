package flatfile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"slices"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// Export snapshots every collection into a fresh SQLite database at dbPath
// so the data can be queried with SQL. Each collection becomes a table with
// one untyped column per field. An existing file at dbPath is replaced.
//
// Collections are exported one at a time, each under its own guard; the
// snapshot is not consistent across collections.
func (s *Store) Export(ctx context.Context, dbPath string) error {
	names, err := s.exportNames()
	if err != nil {
		return err
	}

	if err := os.Remove(dbPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", dbPath, err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer db.Close()

	for _, name := range names {
		if err := s.exportCollection(ctx, db, name); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}
	s.logger.Info("exported collections", "path", dbPath, "collections", len(names))
	return nil
}

// exportNames returns the catalog collections followed by any other
// collection found on disk.
func (s *Store) exportNames() ([]string, error) {
	onDisk, err := s.files.list()
	if err != nil {
		return nil, err
	}
	names := slices.Clone(types.StandardCollectionNames)
	for _, name := range onDisk {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *Store) exportCollection(ctx context.Context, db *sql.DB, name string) error {
	release := s.guard.acquire(name)
	defer release()

	t, err := s.files.read(name)
	if errors.Is(err, types.ErrHeaderlessUnknown) {
		s.logger.Warn("skipping collection without declared fields", "collection", name)
		return nil
	}
	if err != nil {
		return err
	}
	columns, err := s.files.layout(name, t)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		if spec, ok := types.LookupCollection(name); ok {
			columns = spec.Fields
		} else {
			return nil
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning export transaction: %w", err)
	}
	defer tx.Rollback()

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
		placeholders[i] = "?"
	}
	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(quoted, ", "))
	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range t.rows {
		args := make([]any, len(columns))
		for i, col := range columns {
			if args[i], err = sqlValue(rec[col]); err != nil {
				return fmt.Errorf("encoding %s: %w", col, err)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting %s: %w", rec.ID(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export transaction: %w", err)
	}
	return nil
}

// sqlValue maps a value onto a SQLite storage class: booleans become 0/1,
// whole numbers within int64 range INTEGER, other numbers REAL, times
// ISO-8601 TEXT and nested values JSON TEXT.
func sqlValue(v types.Value) (any, error) {
	switch v.Kind() {
	case types.KindNull:
		return nil, nil
	case types.KindBool:
		if b, _ := v.AsBool(); b {
			return int64(1), nil
		}
		return int64(0), nil
	case types.KindNumber:
		n, _ := v.AsNumber()
		// float64(math.MaxInt64) is 2^63, which int64 cannot hold.
		if v.IsInteger() && n >= math.MinInt64 && n < math.MaxInt64 {
			return int64(n), nil
		}
		return n, nil
	case types.KindString:
		str, _ := v.AsString()
		return str, nil
	default:
		return encodeCell(v)
	}
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
