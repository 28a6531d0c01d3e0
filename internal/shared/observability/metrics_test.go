package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAnnotationsTotal_PerRule(t *testing.T) {
	counter := AnnotationsTotal.WithLabelValues("too-many-arguments")
	before := testutil.ToFloat64(counter)
	counter.Add(2)
	if got := testutil.ToFloat64(counter); got != before+2 {
		t.Fatalf("counter = %v, want %v", got, before+2)
	}
}

func TestWriteTextfile(t *testing.T) {
	if err := WriteTextfile(""); err != nil {
		t.Fatalf("empty path should be a no-op: %v", err)
	}

	FilesTotal.WithLabelValues(ResultUnchanged).Inc()
	path := filepath.Join(t.TempDir(), "pyannotate.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `pyannotate_files_total{result="unchanged"}`) {
		t.Fatalf("textfile missing files counter:\n%s", data)
	}
}
