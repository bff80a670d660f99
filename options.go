package treetab

import (
	"log/slog"

	"github.com/tsawler/treetab/flatten"
	"github.com/tsawler/treetab/project"
)

// DefaultPath selects every child of the root element, one row each.
const DefaultPath = "/*/*"

// ExtractOptions holds configuration for table extraction.
type ExtractOptions struct {
	// Source selection inside packages
	part  string
	sheet string

	// Parsing
	encoding  string
	trimSpace bool

	// Flattening
	path         string
	maxDepth     int
	shortenDepth int
	separator    string

	// Projection
	validator project.Validator

	logger *slog.Logger
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		part:         "", // empty means the package's main part
		sheet:        "",
		encoding:     "", // empty means declared or sniffed
		trimSpace:    false,
		path:         DefaultPath,
		maxDepth:     flatten.DefaultMaxDepth,
		shortenDepth: 0,
		separator:    flatten.DefaultSeparator,
		validator:    nil, // nil means project.KeepAll
		logger:       nil,
	}
}

// clone creates a copy of ExtractOptions. Every field is a value or a
// reference that is never mutated.
func (o ExtractOptions) clone() ExtractOptions {
	return o
}

// flattenOptions converts to the options of the flatten package.
func (o ExtractOptions) flattenOptions() flatten.Options {
	return flatten.Options{
		MaxDepth:     o.maxDepth,
		ShortenDepth: o.shortenDepth,
		Separator:    o.separator,
		Logger:       o.logger,
	}
}
