package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Fields every record carries.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Record is one entry of a collection: field name to value.
type Record map[string]Value

// Filter selects records by conjunctive exact match: a record matches when
// every filter field equals the record's field. An empty filter matches all.
type Filter map[string]Value

// ID returns the record's id, or "" when it has none or it is not a string.
func (r Record) ID() string {
	s, _ := r[FieldID].AsString()
	return s
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v.Clone()
	}
	return out
}

// Matches reports whether r satisfies every field of f. A field missing
// from r only matches a null filter value.
func (r Record) Matches(f Filter) bool {
	for k, want := range f {
		if !r[k].Equal(want) {
			return false
		}
	}
	return true
}

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map converts r to plain Go values. See Value.Any.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v.Any()
	}
	return out
}

// RecordFromMap converts plain Go values into a Record.
func RecordFromMap(m map[string]any) (Record, error) {
	out := make(Record, len(m))
	for k, x := range m {
		v, err := FromAny(x)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// FilterFromMap converts plain Go values into a Filter.
func FilterFromMap(m map[string]any) (Filter, error) {
	r, err := RecordFromMap(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	return Filter(r), nil
}

// ParseRecordJSON decodes a JSON object into a Record. Strings stay strings;
// callers wanting times pass Value.Time explicitly.
func ParseRecordJSON(data []byte) (Record, error) {
	var fields map[string]Value
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidData)
	}
	return Record(fields), nil
}
