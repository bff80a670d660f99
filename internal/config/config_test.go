package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/treetab/format"
	"github.com/tsawler/treetab/model"
)

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
input: catalog.xml
depth: 3
output: MD
rename:
  book-title: title
`))
	require.NoError(t, err)

	assert.Equal(t, "catalog.xml", cfg.Input)
	assert.Equal(t, 3, cfg.Depth)
	assert.Equal(t, OutputMarkdown, cfg.Output)
	assert.Equal(t, "/*/*", cfg.Path)
	assert.Equal(t, "-", cfg.Separator)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, map[string]string{"book-title": "title"}, cfg.Rename)
	assert.NoError(t, cfg.Validate())
}

func TestParseExplicitZeroDepth(t *testing.T) {
	cfg, err := Parse([]byte("input: a.xml\ndepth: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Depth)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("depth: [1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "treetab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: feed.xml\npath: //item\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "//item", cfg.Path)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Input = "x.html"
	cfg.TrimSpace = true

	data, err := Marshal(&cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "trim_space: true")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, *back)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"missing input", func(c *Config) { c.Input = "" }, "input is required"},
		{"unknown format", func(c *Config) { c.Format = "pdf" }, `unknown format "pdf"`},
		{"empty path", func(c *Config) { c.Path = "" }, "path cannot be empty"},
		{"negative depth", func(c *Config) { c.Depth = -1 }, "depth must not be negative"},
		{"negative shorten", func(c *Config) { c.Shorten = -2 }, "shorten must not be negative"},
		{"bad output", func(c *Config) { c.Output = "xml" }, "invalid output"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "invalid log-level"},
		{"bad log format", func(c *Config) { c.LogFormat = "yaml" }, "invalid log-format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Input = "in.xml"
			tt.modify(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestInputFormat(t *testing.T) {
	cfg := Default()
	assert.Equal(t, format.Unknown, cfg.InputFormat())

	cfg.Format = "HTML"
	assert.Equal(t, format.HTML, cfg.InputFormat())
}

func TestValidator(t *testing.T) {
	cfg := Default()
	cfg.SkipNull = true
	cfg.Rename = map[string]string{"a": "alpha"}

	table := model.NewTable()
	table.EnsureColumn("a")
	table.EnsureColumn("b")
	row := table.NewRow()
	require.NoError(t, row.Set("a", "1"))
	require.NoError(t, table.AddRow(row))

	doc := model.NewDocument()
	v := cfg.Validator()
	for i, col := range table.Columns() {
		if keep, key, out := v(doc, col.Name, row.GetAt(i), row); keep {
			doc.Set(key, out)
		}
	}
	assert.Equal(t, []string{"alpha"}, doc.Keys())
}

func TestExtractor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(`<r><i><v> 1 </v></i><i/></r>`), 0o600))

	cfg := Default()
	cfg.Input = path
	cfg.Format = "xml"
	cfg.TrimSpace = true

	table, err := cfg.Extractor(nil).Table()
	require.NoError(t, err)
	assert.Equal(t, []string{"i-v"}, table.ColumnNames())
	assert.Equal(t, 2, table.RowCount())

	v, err := table.GetRow(0).Get("i-v")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}
