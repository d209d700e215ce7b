package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// parseFilter turns key=value arguments into a filter. Values that parse
// as JSON keep their JSON type, anything else is a string. A bare argument
// without '=' selects by id.
func parseFilter(args []string) (types.Filter, error) {
	filter := make(types.Filter, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok {
			key, raw = types.FieldID, arg
		}
		if key == "" {
			return nil, userError(fmt.Errorf("%w: empty field name in %q", types.ErrInvalidFilter, arg))
		}
		filter[key] = parseArgValue(raw)
	}
	return filter, nil
}

func parseArgValue(raw string) types.Value {
	var v types.Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return types.String(raw)
	}
	return v
}

// readRecord decodes a JSON object given inline, or read from stdin when
// arg is "-".
func readRecord(arg string, stdin io.Reader) (types.Record, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		if data, err = io.ReadAll(stdin); err != nil {
			return nil, sysError(fmt.Errorf("read stdin: %w", err))
		}
	}
	rec, err := types.ParseRecordJSON(data)
	if err != nil {
		return nil, userError(err)
	}
	return rec, nil
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(a.stdout, string(out))
	return nil
}

// printRecord writes rec as JSON or as "field: value" lines, id first.
func (a *app) printRecord(rec types.Record) error {
	if a.flags.jsonMode {
		return a.printJSON(rec)
	}
	writeRecordText(a.stdout, rec)
	return nil
}

// printRecords writes recs as a JSON array or as text blocks separated by
// blank lines.
func (a *app) printRecords(recs []types.Record) error {
	if a.flags.jsonMode {
		if recs == nil {
			recs = []types.Record{}
		}
		return a.printJSON(recs)
	}
	for i, rec := range recs {
		if i > 0 {
			fmt.Fprintln(a.stdout)
		}
		writeRecordText(a.stdout, rec)
	}
	return nil
}

func writeRecordText(w io.Writer, rec types.Record) {
	if id, ok := rec[types.FieldID]; ok {
		fmt.Fprintf(w, "%s: %s\n", types.FieldID, textValue(id))
	}
	for _, k := range rec.Keys() {
		if k == types.FieldID {
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", k, textValue(rec[k]))
	}
}

// textValue renders strings bare and everything else as JSON.
func textValue(v types.Value) string {
	if s, ok := v.AsString(); ok {
		return s
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return v.GoString()
	}
	return string(b)
}
