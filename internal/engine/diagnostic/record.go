// Package diagnostic decodes pylint's JSON report into typed records.
package diagnostic

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"pyannotate/internal/core/errors"
)

// Record is one pylint message.
type Record struct {
	Type      string
	Module    string
	Obj       string
	Line      int
	Column    int
	Path      string
	Symbol    string
	Message   string
	MessageID string

	// Reported by pylint >= 2.12; nil when absent or null.
	EndLine   *int
	EndColumn *int
}

const (
	keyMessageID    = "message_id"
	keyMessageIDAlt = "message-id"
)

// Parse converts decoded JSON objects into records. The identifier may arrive
// as "message-id" and is renamed before the required fields are checked.
// Keys pylint adds beyond the required set are ignored.
func Parse(entries []map[string]any) ([]Record, error) {
	out := make([]Record, 0, len(entries))
	for i, raw := range entries {
		rec, err := parseEntry(normalizeKeys(raw))
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxIndex, i)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Decode reads a pylint --output-format=json document.
func Decode(r io.Reader) ([]Record, error) {
	entries, err := DecodeEntries(r)
	if err != nil {
		return nil, err
	}
	return Parse(entries)
}

// DecodeEntries reads the raw JSON array without interpreting it. Numbers are
// kept as json.Number so integral checks stay exact.
func DecodeEntries(r io.Reader) ([]map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var entries []map[string]any
	if err := dec.Decode(&entries); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CodeMalformedDiagnostic, "decode pylint json")
	}
	return entries, nil
}

// ForRule keeps the records reported under symbol.
func ForRule(records []Record, symbol string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Symbol == symbol {
			out = append(out, r)
		}
	}
	return out
}

func normalizeKeys(raw map[string]any) map[string]any {
	v, ok := raw[keyMessageIDAlt]
	if !ok {
		return raw
	}
	d := make(map[string]any, len(raw))
	for k, val := range raw {
		d[k] = val
	}
	delete(d, keyMessageIDAlt)
	d[keyMessageID] = v
	return d
}

func parseEntry(d map[string]any) (Record, error) {
	var (
		rec Record
		err error
	)
	fields := []struct {
		key string
		dst *string
	}{
		{"type", &rec.Type},
		{"module", &rec.Module},
		{"obj", &rec.Obj},
		{"path", &rec.Path},
		{"symbol", &rec.Symbol},
		{"message", &rec.Message},
		{keyMessageID, &rec.MessageID},
	}
	for _, f := range fields {
		if *f.dst, err = stringField(d, f.key); err != nil {
			return Record{}, err
		}
	}
	if rec.Line, err = intField(d, "line"); err != nil {
		return Record{}, err
	}
	if rec.Column, err = intField(d, "column"); err != nil {
		return Record{}, err
	}
	if strings.TrimSpace(rec.Obj) == "" {
		return Record{}, malformed("obj", "object reference is empty")
	}
	rec.EndLine = optionalInt(d, "endLine")
	rec.EndColumn = optionalInt(d, "endColumn")
	return rec, nil
}

func stringField(d map[string]any, key string) (string, error) {
	v, ok := d[key]
	if !ok {
		return "", malformed(key, "missing field")
	}
	s, ok := v.(string)
	if !ok {
		return "", malformed(key, fmt.Sprintf("expected string, got %T", v))
	}
	return s, nil
}

func intField(d map[string]any, key string) (int, error) {
	v, ok := d[key]
	if !ok {
		return 0, malformed(key, "missing field")
	}
	n, ok := toInt(v)
	if !ok {
		return 0, malformed(key, fmt.Sprintf("expected integer, got %v", v))
	}
	return n, nil
}

func optionalInt(d map[string]any, key string) *int {
	v, ok := d[key]
	if !ok || v == nil {
		return nil
	}
	n, ok := toInt(v)
	if !ok {
		return nil
	}
	return &n
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func malformed(field, msg string) error {
	return errors.Newf(errors.CodeMalformedDiagnostic, "%s", msg).WithContext(errors.CtxField, field)
}
