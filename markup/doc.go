// Package markup provides a read-mostly element tree for XML and HTML
// documents and a small path query language for selecting nodes.
//
// Parsing returns a document node whose child is the root element:
//
//	doc, err := markup.ParseXMLString(`<catalog><book id="1"/></catalog>`)
//	books, err := doc.Select("/catalog/book")
//
// Only element nodes are kept. Text is attached to the enclosing element
// and reported by [Node.Text] when the element has no child elements;
// whitespace-only text is dropped. XML input in a non-UTF-8 character set
// is decoded through its declaration, and HTML input is sniffed, unless
// [ParseOptions.Encoding] forces a character set.
//
// See [Path] for the supported query syntax.
package markup
