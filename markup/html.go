package markup

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/htmlindex"
)

// OpenHTML parses an HTML file.
func OpenHTML(filename string) (*Node, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseHTML(f)
}

// ParseHTML parses HTML from r with default options.
func ParseHTML(r io.Reader) (*Node, error) {
	return ParseHTMLWithOptions(r, ParseOptions{})
}

// ParseHTMLWithOptions parses HTML from r. The character set is sniffed
// from the content unless opts.Encoding names one. Like the HTML5 parser,
// the result always has html, head, and body elements.
func ParseHTMLWithOptions(r io.Reader, opts ParseOptions) (*Node, error) {
	var err error
	if opts.Encoding != "" {
		enc, lerr := htmlindex.Get(opts.Encoding)
		if lerr != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", opts.Encoding, lerr)
		}
		r = enc.NewDecoder().Reader(r)
	} else {
		r, err = charset.NewReader(r, "")
		if err != nil {
			return nil, fmt.Errorf("detecting charset: %w", err)
		}
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	doc := NewDocument()
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			doc.Append(convertHTML(c, opts.TrimSpace))
		}
	}
	return doc, nil
}

// convertHTML copies an element and its element descendants. Script and
// style bodies are dropped.
func convertHTML(h *html.Node, trim bool) *Node {
	n := NewNode(h.Data)
	for _, a := range h.Attr {
		n.attrs = append(n.attrs, Attr{Name: a.Key, Value: a.Val})
	}

	var text strings.Builder
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			n.Append(convertHTML(c, trim))
		case html.TextNode:
			if h.Data != "script" && h.Data != "style" {
				text.WriteString(c.Data)
			}
		}
	}
	n.text = leafText(text.String(), trim)
	return n
}
