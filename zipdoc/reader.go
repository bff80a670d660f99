// Package zipdoc provides access to the XML parts of ZIP based packages
// such as XLSX, DOCX, PPTX, ODT, ODS, and EPUB.
package zipdoc

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/tsawler/treetab/format"
	"github.com/tsawler/treetab/markup"
)

// ErrPartNotFound is returned when a package has no part of the given name.
var ErrPartNotFound = errors.New("part not found")

// Sheet identifies a worksheet of a spreadsheet package.
type Sheet struct {
	Name  string
	Index int
	Part  string // Path of the worksheet XML inside the package
}

// Reader provides access to the parts of a package.
type Reader struct {
	zipReader *zip.Reader
	closer    io.Closer
	format    format.Format
	files     map[string]*zip.File
	opts      markup.ParseOptions
}

// Open opens a package file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading file info: %w", err)
	}

	r, err := NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// OpenBytes reads a package held in memory.
func OpenBytes(data []byte) (*Reader, error) {
	return NewReader(bytes.NewReader(data), int64(len(data)))
}

// NewReader reads a package from r.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	f, err := format.DetectFromReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("detecting package format: %w", err)
	}

	reader := &Reader{
		zipReader: zr,
		format:    f,
		files:     make(map[string]*zip.File, len(zr.File)),
	}
	for _, zf := range zr.File {
		reader.files[zf.Name] = zf
	}
	return reader, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// SetParseOptions sets the options used when parsing parts.
func (r *Reader) SetParseOptions(opts markup.ParseOptions) {
	r.opts = opts
}

// Format returns the detected package format.
func (r *Reader) Format() format.Format {
	return r.format
}

// Parts returns the names of all files in the package, sorted.
func (r *Reader) Parts() []string {
	names := make([]string, 0, len(r.files))
	for name, f := range r.files {
		if !f.FileInfo().IsDir() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// HasPart reports whether the package contains the named part.
func (r *Reader) HasPart(name string) bool {
	_, ok := r.files[strings.TrimPrefix(name, "/")]
	return ok
}

// ReadPart returns the raw content of a part.
func (r *Reader) ReadPart(name string) ([]byte, error) {
	f, ok := r.files[strings.TrimPrefix(name, "/")]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %s: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Part parses an XML part into a markup tree.
func (r *Reader) Part(name string) (*markup.Node, error) {
	data, err := r.ReadPart(name)
	if err != nil {
		return nil, err
	}
	doc, err := markup.ParseXMLWithOptions(bytes.NewReader(data), r.opts)
	if err != nil {
		return nil, fmt.Errorf("part %s: %w", name, err)
	}
	return doc, nil
}

// MainPart returns the name of the part that holds the main content of
// the package: the document body, the first worksheet, the first slide,
// the OpenDocument content, or the EPUB package document.
func (r *Reader) MainPart() (string, error) {
	var name string
	switch r.format {
	case format.DOCX:
		name = "word/document.xml"
	case format.XLSX:
		sheets, err := r.Sheets()
		if err != nil {
			return "", err
		}
		if len(sheets) == 0 {
			return "", fmt.Errorf("no worksheets found")
		}
		name = sheets[0].Part
	case format.PPTX:
		name = "ppt/slides/slide1.xml"
	case format.ODT, format.ODS:
		name = "content.xml"
	case format.EPUB:
		return r.epubRootFile()
	default:
		return "", fmt.Errorf("unsupported package format: %s", r.format)
	}
	if !r.HasPart(name) {
		return "", fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	return name, nil
}

// Sheets lists the worksheets of a spreadsheet package in workbook order.
func (r *Reader) Sheets() ([]Sheet, error) {
	workbook, err := r.Part("xl/workbook.xml")
	if err != nil {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}

	// Relationship ID -> target path. Relationships are optional.
	targets := make(map[string]string)
	if rels, err := r.Part("xl/_rels/workbook.xml.rels"); err == nil {
		nodes, _ := rels.Select("/Relationships/Relationship")
		for _, rel := range nodes {
			id, _ := rel.Attr("Id")
			target, _ := rel.Attr("Target")
			targets[id] = target
		}
	}

	refs, err := workbook.Select("/workbook/sheets/sheet")
	if err != nil {
		return nil, err
	}

	sheets := make([]Sheet, 0, len(refs))
	for i, ref := range refs {
		name, _ := ref.Attr("name")
		rid, _ := ref.Attr("id")

		target := targets[rid]
		if target == "" {
			// Fall back to default naming
			target = fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		}
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Join("xl", target)
		}

		sheets = append(sheets, Sheet{Name: name, Index: i, Part: target})
	}
	return sheets, nil
}

// SheetPart returns the part name of the named worksheet.
func (r *Reader) SheetPart(name string) (string, error) {
	sheets, err := r.Sheets()
	if err != nil {
		return "", err
	}
	for _, s := range sheets {
		if s.Name == name {
			return s.Part, nil
		}
	}
	return "", fmt.Errorf("%w: sheet %q", ErrPartNotFound, name)
}

// epubRootFile reads META-INF/container.xml to find the package document.
func (r *Reader) epubRootFile() (string, error) {
	container, err := r.Part("META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("parsing container: %w", err)
	}
	rootfile, err := container.SelectFirst("//rootfile[@full-path]")
	if err != nil {
		return "", err
	}
	if rootfile == nil {
		return "", fmt.Errorf("%w: no rootfile in container", ErrPartNotFound)
	}
	full, _ := rootfile.Attr("full-path")
	return full, nil
}
