package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, shouldExit, err := Parse([]string{"catalog.xml"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "catalog.xml", cfg.Input)
	assert.Equal(t, "/*/*", cfg.Path)
	assert.Equal(t, 1, cfg.Depth)
	assert.Equal(t, "csv", cfg.Output)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestParse_Flags(t *testing.T) {
	t.Parallel()

	args := []string{
		"-p", "//book", "-depth", "0", "-shorten", "1",
		"-o", "json", "-skip-null", "-trim", "-format", "html",
		"-sheet", "Data", "-log-level", "debug", "page.bin",
	}
	cfg, _, err := Parse(args, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "//book", cfg.Path)
	assert.Equal(t, 0, cfg.Depth)
	assert.Equal(t, 1, cfg.Shorten)
	assert.Equal(t, "json", cfg.Output)
	assert.True(t, cfg.SkipNull)
	assert.True(t, cfg.TrimSpace)
	assert.Equal(t, "html", cfg.Format)
	assert.Equal(t, "Data", cfg.Sheet)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "page.bin", cfg.Input)
}

func TestParse_ConfigFileWithOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "treetab.yaml")
	yaml := "input: from-file.xml\npath: //item\ndepth: 2\noutput: markdown\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, _, err := Parse([]string{"-config", path, "-depth", "3"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "from-file.xml", cfg.Input)
	assert.Equal(t, "//item", cfg.Path)
	assert.Equal(t, 3, cfg.Depth, "flag should override the file")
	assert.Equal(t, "markdown", cfg.Output)
}

func TestParse_HelpAndMissingInput(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")

	out.Reset()
	_, shouldExit, err = Parse(nil, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "treetab [options] [INPUT]")
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{"unknown flag", []string{"-nope", "a.xml"}, "flag provided but not defined: -nope"},
		{"bad output", []string{"-o", "pdf", "a.xml"}, "invalid output"},
		{"bad log format", []string{"-log-format", "xml", "a.xml"}, "invalid log-format"},
		{"negative depth", []string{"-depth", "-1", "a.xml"}, "depth must not be negative"},
		{"missing config", []string{"-config", "does-not-exist.yaml", "a.xml"}, "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.args, &bytes.Buffer{})
			require.Error(t, err)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tt.errMsg)
		})
	}
}
