package pylint

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyannotate/internal/core/config"
	"pyannotate/internal/core/errors"
)

// fakePylint writes an executable script that prints stdout and exits with code.
func fakePylint(t *testing.T, stdout string, code int) string {
	t.Helper()
	dir := t.TempDir()
	out := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(out, []byte(stdout), 0o600))

	script := filepath.Join(dir, "pylint")
	body := "#!/bin/sh\necho \"$@\" > " + filepath.Join(dir, "args") + "\ncat " + out + "\nexit " + strconv.Itoa(code) + "\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o700))
	return script
}

func TestRunner_Args(t *testing.T) {
	r := NewRunner(config.Pylint{Command: "python -m pylint", Args: []string{"--rcfile=x"}})
	assert.Equal(t,
		[]string{"-m", "pylint", "a.py", "--disable=all", "--enable", "too-many-arguments", "--output-format=json", "--rcfile=x"},
		r.Args("a.py", "too-many-arguments"))
}

func TestRunner_DecodesMessages(t *testing.T) {
	// pylint exits with 8 when it emitted refactor messages.
	script := fakePylint(t, `[{"obj": "f", "symbol": "too-many-arguments", "line": 1}]`, 8)
	r := NewRunner(config.Pylint{Command: script, Timeout: 10 * time.Second})

	entries, err := r.Diagnostics(context.Background(), "too-many-arguments", "src.py")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f", entries[0]["obj"])

	args, err := os.ReadFile(filepath.Join(filepath.Dir(script), "args"))
	require.NoError(t, err)
	assert.Equal(t, "src.py --disable=all --enable too-many-arguments --output-format=json\n", string(args))
}

func TestRunner_NoOutput(t *testing.T) {
	r := NewRunner(config.Pylint{Command: fakePylint(t, "", 0)})
	entries, err := r.Diagnostics(context.Background(), "too-many-arguments", "src.py")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunner_FatalExit(t *testing.T) {
	r := NewRunner(config.Pylint{Command: fakePylint(t, "", 32)})
	_, err := r.Diagnostics(context.Background(), "too-many-arguments", "src.py")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInternal))
	assert.Contains(t, err.Error(), "exit status 32")
}

func TestRunner_MissingCommand(t *testing.T) {
	r := NewRunner(config.Pylint{Command: filepath.Join(t.TempDir(), "nope")})
	_, err := r.Diagnostics(context.Background(), "too-many-arguments", "src.py")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start pylint")
}
