package markup

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// ParseOptions controls how markup is turned into a tree.
type ParseOptions struct {
	// Encoding forces the input character set (an HTML/WHATWG label such
	// as "windows-1252"). Empty means use the document declaration.
	Encoding string

	// TrimSpace trims leading and trailing whitespace from leaf text.
	// Whitespace-only text is always dropped.
	TrimSpace bool
}

// OpenXML parses an XML file.
func OpenXML(filename string) (*Node, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseXML(f)
}

// ParseXML parses XML from r with default options.
func ParseXML(r io.Reader) (*Node, error) {
	return ParseXMLWithOptions(r, ParseOptions{})
}

// ParseXMLString parses an XML string.
func ParseXMLString(s string) (*Node, error) {
	return ParseXML(strings.NewReader(s))
}

// ParseXMLWithOptions parses XML from r. The returned node is a document
// node whose child is the root element. Element and attribute names are
// local names; namespace declarations are not reported as attributes.
func ParseXMLWithOptions(r io.Reader, opts ParseOptions) (*Node, error) {
	if opts.Encoding != "" {
		enc, err := htmlindex.Get(opts.Encoding)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", opts.Encoding, err)
		}
		r = enc.NewDecoder().Reader(r)
	}

	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader(opts.Encoding != "")

	doc := NewDocument()
	stack := []*Node{doc}
	texts := []*strings.Builder{{}}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := NewNode(t.Name.Local)
			for _, a := range t.Attr {
				if isNamespaceDecl(a.Name) {
					continue
				}
				n.attrs = append(n.attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			stack[len(stack)-1].Append(n)
			stack = append(stack, n)
			texts = append(texts, &strings.Builder{})

		case xml.EndElement:
			n := stack[len(stack)-1]
			n.text = leafText(texts[len(texts)-1].String(), opts.TrimSpace)
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]

		case xml.CharData:
			texts[len(texts)-1].Write(t)
		}
	}

	if len(doc.children) == 0 {
		return nil, fmt.Errorf("parsing XML: no root element")
	}
	return doc, nil
}

// charsetReader resolves encoding declarations through the WHATWG label
// index. When the input was already decoded the declaration is ignored.
func charsetReader(decoded bool) func(string, io.Reader) (io.Reader, error) {
	return func(label string, input io.Reader) (io.Reader, error) {
		if decoded {
			return input, nil
		}
		enc, err := htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
		}
		return enc.NewDecoder().Reader(input), nil
	}
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}

func leafText(s string, trim bool) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if trim {
		return strings.TrimSpace(s)
	}
	return s
}
