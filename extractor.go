package treetab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/tsawler/treetab/flatten"
	"github.com/tsawler/treetab/format"
	"github.com/tsawler/treetab/markup"
	"github.com/tsawler/treetab/model"
	"github.com/tsawler/treetab/project"
	"github.com/tsawler/treetab/zipdoc"
)

// source reads a caller supplied reader once and shares the bytes between
// every Extractor derived from the same FromReader call.
type source struct {
	once sync.Once
	r    io.Reader
	data []byte
	err  error
}

func (s *source) bytes() ([]byte, error) {
	s.once.Do(func() {
		s.data, s.err = io.ReadAll(s.r)
		s.r = nil
	})
	return s.data, s.err
}

// Extractor provides a fluent interface for turning XML, HTML, and ZIP
// packages into tables and documents. Each configuration method returns
// a new Extractor instance, making it safe for concurrent use and
// allowing method chaining.
type Extractor struct {
	// Source (exactly one is set)
	filename string
	src      *source
	node     *markup.Node

	format format.Format

	// Configuration
	options ExtractOptions
}

// clone creates a shallow copy of the Extractor with a copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		src:      e.src,
		node:     e.node,
		format:   e.format,
		options:  e.options.clone(),
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Select sets the path expression that picks the nodes to turn into rows.
// The default is DefaultPath.
//
// Example:
//
//	table, err := treetab.Open("feed.xml").Select("/rss/channel/item").Table()
func (e *Extractor) Select(path string) *Extractor {
	newExt := e.clone()
	newExt.options.path = path
	return newExt
}

// Depth sets how many levels below each selected node are expanded into
// columns. The default is flatten.DefaultMaxDepth.
func (e *Extractor) Depth(maxDepth int) *Extractor {
	newExt := e.clone()
	newExt.options.maxDepth = maxDepth
	return newExt
}

// Shorten strips depth leading segments from every column name after
// flattening. An empty separator means flatten.DefaultSeparator.
//
// Example:
//
//	// book-title -> title
//	table, err := treetab.Open("catalog.xml").Select("//book").Shorten(1, "-").Table()
func (e *Extractor) Shorten(depth int, separator string) *Extractor {
	newExt := e.clone()
	newExt.options.shortenDepth = depth
	newExt.options.separator = separator
	return newExt
}

// Part selects the XML part of a ZIP package to read, such as
// "word/document.xml". By default the package's main part is used.
func (e *Extractor) Part(name string) *Extractor {
	newExt := e.clone()
	newExt.options.part = name
	return newExt
}

// Sheet selects a worksheet of a spreadsheet package by name.
func (e *Extractor) Sheet(name string) *Extractor {
	newExt := e.clone()
	newExt.options.sheet = name
	return newExt
}

// Encoding forces the character set of the input, such as "windows-1252".
func (e *Extractor) Encoding(label string) *Extractor {
	newExt := e.clone()
	newExt.options.encoding = label
	return newExt
}

// TrimSpace trims surrounding whitespace from text values.
func (e *Extractor) TrimSpace() *Extractor {
	newExt := e.clone()
	newExt.options.trimSpace = true
	return newExt
}

// Validator sets the per-column transform used by Documents and JSON.
// A nil validator means project.KeepAll.
func (e *Extractor) Validator(v project.Validator) *Extractor {
	newExt := e.clone()
	newExt.options.validator = v
	return newExt
}

// Logger sets the logger that receives debug records. By default nothing
// is logged.
func (e *Extractor) Logger(l *slog.Logger) *Extractor {
	newExt := e.clone()
	newExt.options.logger = l
	return newExt
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Node parses the input and returns its document node. For ZIP packages
// this is the selected part.
func (e *Extractor) Node() (*markup.Node, error) {
	if e.node != nil {
		return e.node, nil
	}

	data, err := e.readInput()
	if err != nil {
		return nil, err
	}

	f := e.format
	if f == format.Unknown {
		f, err = format.DetectFromReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("detecting format: %w", err)
		}
	}

	opts := markup.ParseOptions{
		Encoding:  e.options.encoding,
		TrimSpace: e.options.trimSpace,
	}

	var doc *markup.Node
	switch {
	case f == format.HTML:
		doc, err = markup.ParseHTMLWithOptions(bytes.NewReader(data), opts)
	case f.IsContainer():
		doc, err = e.parsePackage(data, opts)
	case f == format.XML:
		doc, err = markup.ParseXMLWithOptions(bytes.NewReader(data), opts)
	default:
		// Unrecognized content gets a chance as XML
		doc, err = markup.ParseXMLWithOptions(bytes.NewReader(data), opts)
		if err != nil {
			err = fmt.Errorf("unsupported format %s: %w", f, err)
		}
	}
	if err != nil {
		return nil, err
	}

	e.logger().Debug("parsed input", "source", e.describe(), "format", f.String())
	return doc, nil
}

// Nodes returns the nodes matched by the configured path, in document
// order.
func (e *Extractor) Nodes() ([]*markup.Node, error) {
	doc, err := e.Node()
	if err != nil {
		return nil, err
	}
	nodes, err := doc.Select(e.options.path)
	if err != nil {
		return nil, fmt.Errorf("selecting %q: %w", e.options.path, err)
	}
	e.logger().Debug("selected nodes", "path", e.options.path, "count", len(nodes))
	return nodes, nil
}

// Table flattens the selected nodes into a table with one row per node.
//
// Example:
//
//	table, err := treetab.Open("catalog.xml").Select("//book").Table()
func (e *Extractor) Table() (*model.Table, error) {
	nodes, err := e.Nodes()
	if err != nil {
		return nil, err
	}
	return flatten.Run(nodes, e.options.flattenOptions())
}

// Documents flattens the selected nodes and projects every row through
// the configured validator.
func (e *Extractor) Documents() ([]*model.Document, error) {
	table, err := e.Table()
	if err != nil {
		return nil, err
	}
	return project.Table(table, e.options.validator), nil
}

// JSON returns the projected documents as an indented JSON array.
func (e *Extractor) JSON() ([]byte, error) {
	docs, err := e.Documents()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(docs, "", "  ")
}

// CSV returns the table in CSV format with a header line.
func (e *Extractor) CSV() (string, error) {
	table, err := e.Table()
	if err != nil {
		return "", err
	}
	return table.ToCSV(), nil
}

// Markdown returns the table in markdown format.
func (e *Extractor) Markdown() (string, error) {
	table, err := e.Table()
	if err != nil {
		return "", err
	}
	return table.ToMarkdown(), nil
}

// ============================================================================
// Helpers
// ============================================================================

func (e *Extractor) readInput() ([]byte, error) {
	if e.src != nil {
		data, err := e.src.bytes()
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		return data, nil
	}
	if e.filename == "" {
		return nil, fmt.Errorf("no input specified")
	}
	data, err := os.ReadFile(e.filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return data, nil
}

func (e *Extractor) parsePackage(data []byte, opts markup.ParseOptions) (*markup.Node, error) {
	pkg, err := zipdoc.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()
	pkg.SetParseOptions(opts)

	part := e.options.part
	switch {
	case part != "":
	case e.options.sheet != "":
		part, err = pkg.SheetPart(e.options.sheet)
	default:
		part, err = pkg.MainPart()
	}
	if err != nil {
		return nil, err
	}

	e.logger().Debug("reading package part", "format", pkg.Format().String(), "part", part)
	return pkg.Part(part)
}

func (e *Extractor) describe() string {
	switch {
	case e.filename != "":
		return e.filename
	case e.src != nil:
		return "reader"
	default:
		return "node"
	}
}

func (e *Extractor) logger() *slog.Logger {
	if e.options.logger != nil {
		return e.options.logger
	}
	return slog.New(slog.DiscardHandler)
}
