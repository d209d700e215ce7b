package flatfile

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// Cell codec. Values are written to cells as plain text and sniffed back
// into typed values by an ordered rule list; the first rule that accepts a
// cell wins. The order is part of the file format: data written by earlier
// versions depends on it.
//
// Text that looks like a number, boolean or date comes back as one, so a
// string field holding "002" reads back as the number 2.

// encodeCell renders v as cell text.
func encodeCell(v types.Value) (string, error) {
	switch v.Kind() {
	case types.KindNull:
		return "", nil
	case types.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	case types.KindNumber:
		n, _ := v.AsNumber()
		return types.FormatNumber(n), nil
	case types.KindString:
		s, _ := v.AsString()
		return s, nil
	case types.KindTime:
		t, _ := v.AsTime()
		return t.UTC().Format(types.TimeLayout), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

// cellRule converts cell text to a value when it recognises it.
type cellRule func(cell string) (types.Value, bool)

// cellRules is evaluated in order by decodeCell.
var cellRules = []cellRule{
	decodeEmpty,
	decodeBool,
	decodeNumber,
	decodeTime,
	decodeJSON,
}

// decodeCell converts cell text back into a value. It never fails; text no
// rule accepts is returned as a string.
func decodeCell(cell string) types.Value {
	for _, rule := range cellRules {
		if v, ok := rule(cell); ok {
			return v
		}
	}
	return types.String(cell)
}

func decodeEmpty(cell string) (types.Value, bool) {
	return types.Null(), cell == ""
}

func decodeBool(cell string) (types.Value, bool) {
	switch cell {
	case "true":
		return types.Bool(true), true
	case "false":
		return types.Bool(false), true
	}
	return types.Value{}, false
}

// numericLiteral accepts decimal integers, fractions and exponents. Hex,
// Inf and NaN spellings stay strings.
var numericLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func decodeNumber(cell string) (types.Value, bool) {
	if !numericLiteral.MatchString(cell) {
		return types.Value{}, false
	}
	n, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		// Out of range.
		return types.Value{}, false
	}
	return types.Number(n), true
}

// isoPrefix matches the start of an ISO-8601 date-time.
var isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)

// timeLayouts are tried in order once isoPrefix matches. Layouts without a
// zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

func decodeTime(cell string) (types.Value, bool) {
	if !isoPrefix.MatchString(cell) {
		return types.Value{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return types.Time(t), true
		}
	}
	return types.Value{}, false
}

func decodeJSON(cell string) (types.Value, bool) {
	if !strings.HasPrefix(cell, "[") && !strings.HasPrefix(cell, "{") {
		return types.Value{}, false
	}
	var v types.Value
	if err := json.Unmarshal([]byte(cell), &v); err != nil {
		// Malformed JSON keeps its raw text.
		return types.Value{}, false
	}
	return v, true
}
