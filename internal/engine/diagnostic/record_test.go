package diagnostic

import (
	"strings"
	"testing"

	"pyannotate/internal/core/errors"
)

const pylintReport = `[
    {
        "type": "refactor",
        "module": "src",
        "obj": "Foo.__init__",
        "line": 5,
        "column": 4,
        "endLine": 5,
        "endColumn": 16,
        "path": "src.py",
        "symbol": "too-many-arguments",
        "message": "Too many arguments (9/5)",
        "message-id": "R0913"
    },
    {
        "type": "refactor",
        "module": "src",
        "obj": "Foo",
        "line": 2,
        "column": 0,
        "endLine": null,
        "endColumn": null,
        "path": "src.py",
        "symbol": "too-many-instance-attributes",
        "message": "Too many instance attributes (8/7)",
        "message_id": "R0902"
    }
]`

func TestDecode(t *testing.T) {
	records, err := Decode(strings.NewReader(pylintReport))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Obj != "Foo.__init__" || first.MessageID != "R0913" || first.Line != 5 || first.Column != 4 {
		t.Fatalf("unexpected first record %+v", first)
	}
	if first.EndColumn == nil || *first.EndColumn != 16 {
		t.Fatalf("expected endColumn 16, got %v", first.EndColumn)
	}

	second := records[1]
	if second.MessageID != "R0902" || second.Symbol != "too-many-instance-attributes" {
		t.Fatalf("unexpected second record %+v", second)
	}
	if second.EndLine != nil {
		t.Fatalf("null endLine should decode to nil, got %v", *second.EndLine)
	}
}

func TestDecode_EmptyOutput(t *testing.T) {
	for _, input := range []string{"", "[]"} {
		records, err := Decode(strings.NewReader(input))
		if err != nil {
			t.Fatalf("Decode(%q): %v", input, err)
		}
		if len(records) != 0 {
			t.Fatalf("Decode(%q) = %d records, want 0", input, len(records))
		}
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	_, err := Decode(strings.NewReader("{not json"))
	if !errors.IsCode(err, errors.CodeMalformedDiagnostic) {
		t.Fatalf("expected MALFORMED_DIAGNOSTIC, got %v", err)
	}
}

func validEntry() map[string]any {
	return map[string]any{
		"type":       "refactor",
		"module":     "m",
		"obj":        "f",
		"line":       float64(1),
		"column":     float64(0),
		"path":       "m.py",
		"symbol":     "too-many-arguments",
		"message":    "Too many arguments (6/5)",
		"message-id": "R0913",
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"missing obj", func(d map[string]any) { delete(d, "obj") }, "obj"},
		{"empty obj", func(d map[string]any) { d["obj"] = "  " }, "obj"},
		{"missing path", func(d map[string]any) { delete(d, "path") }, "path"},
		{"missing identifier", func(d map[string]any) { delete(d, "message-id") }, "message_id"},
		{"line not a number", func(d map[string]any) { d["line"] = "1" }, "line"},
		{"fractional column", func(d map[string]any) { d["column"] = 1.5 }, "column"},
		{"symbol mistyped", func(d map[string]any) { d["symbol"] = 3 }, "symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := validEntry()
			tt.mutate(entry)
			_, err := Parse([]map[string]any{validEntry(), entry})
			if !errors.IsCode(err, errors.CodeMalformedDiagnostic) {
				t.Fatalf("expected MALFORMED_DIAGNOSTIC, got %v", err)
			}
			for _, want := range []string{"field=" + tt.field, "index=1"} {
				if !strings.Contains(err.Error(), want) {
					t.Fatalf("error %q does not mention %s", err.Error(), want)
				}
			}
		})
	}
}

func TestParse_DoesNotMutateInput(t *testing.T) {
	entry := validEntry()
	if _, err := Parse([]map[string]any{entry}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := entry["message-id"]; !ok {
		t.Fatal("input lost its message-id key")
	}
	if _, ok := entry["message_id"]; ok {
		t.Fatal("input gained a message_id key")
	}
}

func TestForRule(t *testing.T) {
	records := []Record{
		{Obj: "f", Symbol: "too-many-arguments"},
		{Obj: "C", Symbol: "too-many-instance-attributes"},
		{Obj: "g", Symbol: "too-many-arguments"},
	}
	got := ForRule(records, "too-many-arguments")
	if len(got) != 2 || got[0].Obj != "f" || got[1].Obj != "g" {
		t.Fatalf("ForRule = %+v", got)
	}
	if n := len(ForRule(records, "line-too-long")); n != 0 {
		t.Fatalf("expected no records for an absent rule, got %d", n)
	}
}
