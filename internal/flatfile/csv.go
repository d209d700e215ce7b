package flatfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// parseRows splits tabular text into rows using the quoted-CSV grammar.
// Rows may be ragged; the caller zips them against the header.
func parseRows(data []byte, delimiter rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing rows: %w", err)
	}
	return rows, nil
}

// formatRows renders rows as tabular text. With quoteAll every cell is
// quoted; otherwise only cells that need it.
func formatRows(rows [][]string, delimiter rune, quoteAll bool) ([]byte, error) {
	var buf bytes.Buffer
	if quoteAll {
		sep := string(delimiter)
		for _, row := range rows {
			for i, cell := range row {
				if i > 0 {
					buf.WriteString(sep)
				}
				buf.WriteByte('"')
				buf.WriteString(strings.ReplaceAll(cell, `"`, `""`))
				buf.WriteByte('"')
			}
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	}

	w := csv.NewWriter(&buf)
	w.Comma = delimiter
	for _, row := range rows {
		if len(row) == 1 && row[0] == "" {
			// A bare empty line would be skipped on read.
			w.Flush()
			buf.WriteString("\"\"\n")
			continue
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("formatting rows: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("formatting rows: %w", err)
	}
	return buf.Bytes(), nil
}
