package types

import (
	"errors"
	"unicode/utf8"
)

// Config holds the construction parameters of a flat-file store. It is
// fixed for the lifetime of the store.
type Config struct {
	DataDir   string `json:"data_dir" yaml:"data_dir"`
	Delimiter rune   `json:"delimiter" yaml:"delimiter"`
	QuoteAll  bool   `json:"quote_all" yaml:"quote_all"`
	Header    bool   `json:"header" yaml:"header"`
}

// FileExtension is appended to a collection name to form its file name.
const FileExtension = ".csv"

// DefaultConfig returns a Config for dataDir with comma delimiters, minimal
// quoting and header rows.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:   dataDir,
		Delimiter: ',',
		Header:    true,
	}
}

// Config validation errors.
var (
	ErrDataDirEmpty     = errors.New("data directory must not be empty")
	ErrDelimiterInvalid = errors.New("invalid field delimiter")
)

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	if !ValidDelimiter(c.Delimiter) {
		return ErrDelimiterInvalid
	}
	return nil
}

// ValidDelimiter reports whether r can separate fields.
func ValidDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && r != utf8.RuneError && utf8.ValidRune(r)
}
