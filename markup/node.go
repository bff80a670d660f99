package markup

import (
	"errors"
	"strings"
)

// DocumentName is the name of the synthetic node returned by the parsers
// that holds the root element.
const DocumentName = "#document"

// ErrNilNode is returned when an operation is given a nil node.
var ErrNilNode = errors.New("nil node")

// Attr is a single name/value attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is an element of a markup tree. Only element nodes are kept; text
// is stored on the element and reported by Text only when the element has
// no child elements.
type Node struct {
	name     string
	attrs    []Attr
	children []*Node
	text     string
	parent   *Node
}

// NewNode creates a detached element node.
func NewNode(name string, attrs ...Attr) *Node {
	return &Node{
		name:  name,
		attrs: append([]Attr(nil), attrs...),
	}
}

// NewDocument creates an empty document node.
func NewDocument() *Node {
	return &Node{name: DocumentName}
}

// Append adds children to n in order and returns n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// SetText sets the text content of n and returns n.
func (n *Node) SetText(text string) *Node {
	n.text = text
	return n
}

// SetAttr sets an attribute, replacing an existing one of the same name.
func (n *Node) SetAttr(name, value string) *Node {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return n
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	return n
}

// Name returns the element name.
func (n *Node) Name() string { return n.name }

// Attrs returns the attributes in document order.
func (n *Node) Attrs() []Attr { return n.attrs }

// Children returns the child elements in document order.
func (n *Node) Children() []*Node { return n.children }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// IsDocument reports whether n is a document node.
func (n *Node) IsDocument() bool { return n.name == DocumentName }

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Text returns the text content of a leaf element. Elements with children
// have no text of their own.
func (n *Node) Text() string {
	if len(n.children) > 0 {
		return ""
	}
	return n.text
}

// InnerText returns the concatenated text of n and all its descendants.
func (n *Node) InnerText() string {
	if len(n.children) == 0 {
		return n.text
	}
	var sb strings.Builder
	n.walk(func(d *Node) {
		if len(d.children) == 0 {
			sb.WriteString(d.text)
		}
	})
	return sb.String()
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// DocumentElement returns the first element child of a document node, or
// n itself when n is not a document.
func (n *Node) DocumentElement() *Node {
	if n.IsDocument() {
		if len(n.children) == 0 {
			return nil
		}
		return n.children[0]
	}
	return n
}

// walk visits n and its descendants in document order.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}
