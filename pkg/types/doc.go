// Package types defines the record store call surface shared by the flat-file
// engine and the typed wrappers built on it: the Value union, Record and
// Filter, the Store interface, configuration, the collection catalog and the
// standard errors.
package types
