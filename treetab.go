// Package treetab provides a fluent API for flattening XML and HTML
// documents into tables and projecting table rows into structured
// documents.
//
// Basic usage:
//
//	table, err := treetab.Open("catalog.xml").Select("/catalog/book").Table()
//	if err != nil {
//	    // handle error
//	}
//	fmt.Print(table.ToCSV())
//
// With options:
//
//	docs, err := treetab.Open("catalog.xml").
//	    Select("/catalog/book").
//	    Depth(2).
//	    Shorten(1, "-").
//	    Documents()
//
// Spreadsheets and other ZIP packages are read through one of their XML
// parts:
//
//	table, err := treetab.Open("report.xlsx").
//	    Sheet("Data").
//	    Select("/worksheet/sheetData/row").
//	    Table()
//
// The lower-level markup, flatten, and project packages are also available.
package treetab

import (
	"bytes"
	"io"
	"strings"

	"github.com/tsawler/treetab/format"
	"github.com/tsawler/treetab/markup"
)

// Open returns an Extractor for the named file. The format is taken from
// the extension, or sniffed from the content when the extension is not
// recognized. Nothing is read until a terminal operation is called.
//
// Example:
//
//	table, err := treetab.Open("catalog.xml").Table()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		format:   format.Detect(filename),
		options:  defaultOptions(),
	}
}

// OpenAs returns an Extractor for the named file read as format f,
// whatever its extension.
func OpenAs(filename string, f format.Format) *Extractor {
	return &Extractor{
		filename: filename,
		format:   f,
		options:  defaultOptions(),
	}
}

// FromReader returns an Extractor that reads its input from r. Pass
// format.Unknown to sniff the format from the content.
//
// Example:
//
//	table, err := treetab.FromReader(resp.Body, format.XML).Select("//item").Table()
func FromReader(r io.Reader, f format.Format) *Extractor {
	return &Extractor{
		src:     &source{r: r},
		format:  f,
		options: defaultOptions(),
	}
}

// FromBytes returns an Extractor over data held in memory.
func FromBytes(data []byte, f format.Format) *Extractor {
	return FromReader(bytes.NewReader(data), f)
}

// FromNode returns an Extractor over an already parsed tree.
//
// Example:
//
//	doc, _ := markup.ParseXMLString(src)
//	table, err := treetab.FromNode(doc).Select("//row").Table()
func FromNode(n *markup.Node) *Extractor {
	return &Extractor{
		node:    n,
		options: defaultOptions(),
	}
}

// FromString returns an Extractor over markup held in a string.
func FromString(s string, f format.Format) *Extractor {
	return FromReader(strings.NewReader(s), f)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	table := treetab.Must(treetab.Open("catalog.xml").Table())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
