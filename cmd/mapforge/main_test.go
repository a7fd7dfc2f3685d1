package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := logOutput
	logOutput = buf
	t.Cleanup(func() { logOutput = prev })
	return buf
}

func TestRunHelp(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, run(out, []string{"-h"}))
	assert.Contains(t, out.String(), "Usage:")
}

func TestRunUsageErrors(t *testing.T) {
	tests := [][]string{
		{"-bogus"},
		{"extra-arg"},
		{"-list"},
		{"-log-level", "loud"},
		{"-log-format", "xml"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			err := run(&bytes.Buffer{}, args)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr), "got %v", err)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}

func TestRunGenerateSaveAndList(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "small.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
map {
  width  = 16
  height = 16
  seed   = 5
}
treasure {
  resource_piles = 4
  mines          = 2
  dwellings      = 1
}
spawn {
  min_distance = 4
}
`), 0600))
	dbPath := filepath.Join(dir, "data", "maps.db")

	logs := captureLogs(t)
	out := &bytes.Buffer{}
	require.NoError(t, run(out, []string{"-config", cfgPath, "-db", dbPath, "-log-format", "json"}))
	assert.Contains(t, logs.String(), `"msg":"map generated"`)
	assert.NotContains(t, out.String(), `"msg"`)

	out.Reset()
	logs.Reset()
	require.NoError(t, run(out, []string{"-db", dbPath, "-list", "-log-level", "debug", "-log-format", "json"}))
	assert.Contains(t, out.String(), "seed=5")
	assert.Contains(t, out.String(), "16x16")
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		assert.NotContains(t, line, `"level"`, "log record mixed into listing")
	}
}

func TestRunBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte("map {\n  width = 1\n}\n"), 0600))

	err := run(&bytes.Buffer{}, []string{"-config", cfgPath, "-log-level", "error"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestRunLoadUnknownMap(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "maps.db")
	err := run(&bytes.Buffer{}, []string{"-db", dbPath, "-load", "nope", "-log-level", "error"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load map nope")
}
