// Package format provides input format detection for the treetab library.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported input format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// XML indicates a plain XML document.
	XML
	// HTML indicates an HTML document.
	HTML
	// DOCX indicates a Microsoft Word (.docx) package.
	DOCX
	// XLSX indicates a Microsoft Excel (.xlsx) package.
	XLSX
	// PPTX indicates a Microsoft PowerPoint (.pptx) package.
	PPTX
	// ODT indicates an OpenDocument Text (.odt) package.
	ODT
	// ODS indicates an OpenDocument Spreadsheet (.ods) package.
	ODS
	// EPUB indicates an EPUB publication.
	EPUB
)

// info describes one format. Index 0 is Unknown.
type info struct {
	name      string
	ext       string
	container bool
}

var formats = [...]info{
	Unknown: {name: "Unknown"},
	XML:     {name: "XML", ext: ".xml"},
	HTML:    {name: "HTML", ext: ".html"},
	DOCX:    {name: "DOCX", ext: ".docx", container: true},
	XLSX:    {name: "XLSX", ext: ".xlsx", container: true},
	PPTX:    {name: "PPTX", ext: ".pptx", container: true},
	ODT:     {name: "ODT", ext: ".odt", container: true},
	ODS:     {name: "ODS", ext: ".ods", container: true},
	EPUB:    {name: "EPUB", ext: ".epub", container: true},
}

// extensions maps lowercase file extensions, aliases included, to formats.
var extensions = map[string]Format{
	".xml":   XML,
	".xsd":   XML,
	".rss":   XML,
	".atom":  XML,
	".svg":   XML,
	".xhtml": XML,
	".html":  HTML,
	".htm":   HTML,
	".docx":  DOCX,
	".xlsx":  XLSX,
	".pptx":  PPTX,
	".odt":   ODT,
	".ods":   ODS,
	".epub":  EPUB,
}

// mimeTypes maps the content of the mimetype entry that OpenDocument and
// EPUB packages store first.
var mimeTypes = map[string]Format{
	"application/vnd.oasis.opendocument.text":        ODT,
	"application/vnd.oasis.opendocument.spreadsheet": ODS,
	"application/epub+zip":                           EPUB,
}

// ooxmlDirs maps the top-level directory of an Office Open XML package.
var ooxmlDirs = map[string]Format{
	"word": DOCX,
	"xl":   XLSX,
	"ppt":  PPTX,
}

func (f Format) info() info {
	if f < 0 || int(f) >= len(formats) {
		return formats[Unknown]
	}
	return formats[f]
}

// String returns the name of the format, such as "XLSX".
func (f Format) String() string { return f.info().name }

// Extension returns the canonical file extension, or "" for Unknown.
func (f Format) Extension() string { return f.info().ext }

// IsContainer reports whether the format is a ZIP package of XML parts.
func (f Format) IsContainer() bool { return f.info().container }

// Parse returns the format named by s, case-insensitively. Both names
// ("xml") and extensions (".xml") are accepted.
func Parse(s string) Format {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Unknown
	}
	return Detect("file." + strings.TrimPrefix(s, "."))
}

// Detect returns the format implied by the extension of filename.
func Detect(filename string) Format {
	return extensions[strings.ToLower(filepath.Ext(filename))]
}

// DetectFromMagic checks leading bytes to determine format.
// ZIP packages cannot be told apart from magic bytes alone, so they
// report Unknown; use DetectFromReader for those.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	// ZIP magic: PK\x03\x04
	if isZIP(data) {
		return Unknown
	}

	if detectHTMLMagic(data) {
		return HTML
	}
	if detectXMLMagic(data) {
		return XML
	}

	return Unknown
}

func isZIP(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04
}

// trimLeading drops a UTF-8 byte order mark and leading whitespace.
func trimLeading(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	return bytes.TrimLeft(data, " \t\r\n")
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	data = trimLeading(data)
	if len(data) == 0 {
		return false
	}

	// Check for common HTML signatures (case-insensitive for DOCTYPE)
	upper := strings.ToUpper(string(data))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper[:min(500, len(upper))], "<HTML") {
		return true
	}

	return false
}

// detectXMLMagic checks for an XML declaration or a leading element.
func detectXMLMagic(data []byte) bool {
	data = trimLeading(data)
	if len(data) < 2 || data[0] != '<' {
		return false
	}
	if bytes.HasPrefix(data, []byte("<?xml")) || bytes.HasPrefix(data, []byte("<!--")) {
		return true
	}
	c := data[1]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// DetectFromReader inspects the content to determine format.
// This is more reliable than extension-based detection and can
// distinguish between different ZIP-based packages.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if isZIP(magic) {
		return detectZIPFormat(r, size)
	}

	return DetectFromMagic(magic), nil
}

// detectZIPFormat inspects a ZIP archive to determine which package it is.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		if mt, err := readMimeType(f); err == nil {
			if found, ok := mimeTypes[mt]; ok {
				return found, nil
			}
		}
		break
	}

	for _, f := range zr.File {
		dir, _, nested := strings.Cut(f.Name, "/")
		if found, ok := ooxmlDirs[dir]; ok && nested {
			return found, nil
		}
	}

	return Unknown, nil
}

func readMimeType(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, 256))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
