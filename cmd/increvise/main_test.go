package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--root", root, "--log-level", "error", "--env-file", ""}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeHost(t *testing.T, root, name, text string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(text), 0o644))
}

func TestExtractShiftAndShow(t *testing.T) {
	root := t.TempDir()
	writeHost(t, root, "notes/paper.md", "intro\nFirst point here\nmore\ntail")

	out, err := execute(t, root, "extract", "notes/paper.md", "--lines", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "notes/paper/1-first-point-here.md")

	child, err := os.ReadFile(filepath.Join(root, "notes", "paper", "1-first-point-here.md"))
	require.NoError(t, err)
	assert.Equal(t, "First point here", string(child))

	out, err = execute(t, root, "shift", "notes/paper.md", "--at", "1", "--insert", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "applied")

	out, err = execute(t, root, "ranges", "notes/paper.md")
	require.NoError(t, err)
	assert.Contains(t, out, "4-4")

	out, err = execute(t, root, "shift", "notes/paper.md", "--at", "4", "--delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "rejected")

	writeHost(t, root, "notes/paper/1-first-point-here.md", "First point, revised")
	out, err = execute(t, root, "show", "notes/paper.md")
	require.NoError(t, err)
	assert.Equal(t, "\n\nintro\nFirst point, revised\nmore\ntail\n", out)

	out, err = execute(t, root, "reviews")
	require.NoError(t, err)
	assert.Contains(t, out, "notes/paper/1-first-point-here.md")
}

func TestExtractLockedLinesFails(t *testing.T) {
	root := t.TempDir()
	writeHost(t, root, "a.md", "one\ntwo\nthree")

	_, err := execute(t, root, "extract", "a.md", "--lines", "2")
	require.NoError(t, err)

	_, err = execute(t, root, "extract", "a.md", "--lines", "1-2")
	assert.Error(t, err)
}

func TestParseLineRange(t *testing.T) {
	tests := []struct {
		in          string
		first, last int
		wantErr     bool
	}{
		{"3", 3, 3, false},
		{"2-5", 2, 5, false},
		{"x", 0, 0, true},
		{"2-y", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			first, last, err := parseLineRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestShiftNeedsOneEdit(t *testing.T) {
	root := t.TempDir()
	writeHost(t, root, "a.md", "one")

	_, err := execute(t, root, "shift", "a.md", "--at", "1")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "increvise dev")
}
