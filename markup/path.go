package markup

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned when a path expression cannot be compiled.
var ErrInvalidPath = errors.New("invalid path expression")

type axis int

const (
	axisChild axis = iota
	axisSelf
	axisParent
	axisDescendantOrSelf
)

type predicateKind int

const (
	predPosition predicateKind = iota
	predLast
	predAttr
	predChild
)

type predicate struct {
	kind     predicateKind
	pos      int
	name     string
	value    string
	hasValue bool
}

type step struct {
	axis  axis
	name  string // "*" matches any element; empty matches any node
	preds []predicate
}

// Path is a compiled path expression. The supported subset of XPath is:
//
//	/a/b          absolute child steps
//	a/b           steps relative to the context node
//	//b, a//b     descendants at any depth
//	*, ., ..      any element, self, parent
//	b[2]          position among matching siblings (1-based)
//	b[last()]     last matching sibling
//	b[@id]        has attribute
//	b[@id='x']    attribute equals
//	b[title='x']  has a child element whose text equals
type Path struct {
	expr     string
	absolute bool
	steps    []step
}

// Compile parses a path expression.
func Compile(expr string) (*Path, error) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidPath)
	}

	p := &Path{expr: src}
	i := 0
	switch {
	case strings.HasPrefix(src, "//"):
		p.absolute = true
		p.steps = append(p.steps, step{axis: axisDescendantOrSelf})
		i = 2
	case strings.HasPrefix(src, "/"):
		p.absolute = true
		i = 1
		if i == len(src) {
			return p, nil
		}
	}

	for {
		s, next, err := parseStep(src, i)
		if err != nil {
			return nil, err
		}
		p.steps = append(p.steps, s)
		i = next

		if i == len(src) {
			return p, nil
		}
		switch {
		case strings.HasPrefix(src[i:], "//"):
			p.steps = append(p.steps, step{axis: axisDescendantOrSelf})
			i += 2
		case src[i] == '/':
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrInvalidPath, src[i], i)
		}
		if i == len(src) {
			return nil, fmt.Errorf("%w: trailing separator in %q", ErrInvalidPath, src)
		}
	}
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Path {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Path) String() string { return p.expr }

func parseStep(src string, i int) (step, int, error) {
	var s step
	switch {
	case strings.HasPrefix(src[i:], ".."):
		return step{axis: axisParent}, i + 2, nil
	case src[i] == '.':
		return step{axis: axisSelf}, i + 1, nil
	case src[i] == '*':
		s = step{axis: axisChild, name: "*"}
		i++
	default:
		n := scanName(src, i)
		if n == i {
			return s, i, fmt.Errorf("%w: expected step at position %d", ErrInvalidPath, i)
		}
		s = step{axis: axisChild, name: src[i:n]}
		i = n
	}

	for i < len(src) && src[i] == '[' {
		end := closingBracket(src, i)
		if end < 0 {
			return s, i, fmt.Errorf("%w: unterminated predicate at position %d", ErrInvalidPath, i)
		}
		pred, err := parsePredicate(src[i+1 : end])
		if err != nil {
			return s, i, err
		}
		s.preds = append(s.preds, pred)
		i = end + 1
	}
	return s, i, nil
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c == '-' || c == '.' || c == ':' || (c >= '0' && c <= '9')
}

// scanName returns the end of the name starting at i, or i if none.
func scanName(src string, i int) int {
	if i >= len(src) || !isNameStart(src[i]) {
		return i
	}
	j := i + 1
	for j < len(src) && isNameChar(src[j]) {
		j++
	}
	return j
}

// closingBracket finds the ']' matching the '[' at i, skipping quoted text.
func closingBracket(src string, i int) int {
	var quote byte
	for j := i + 1; j < len(src); j++ {
		c := src[j]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ']':
			return j
		}
	}
	return -1
}

func parsePredicate(body string) (predicate, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return predicate{}, fmt.Errorf("%w: empty predicate", ErrInvalidPath)
	}
	if body == "last()" {
		return predicate{kind: predLast}, nil
	}
	if n, err := strconv.Atoi(body); err == nil {
		if n < 1 {
			return predicate{}, fmt.Errorf("%w: position %d must be at least 1", ErrInvalidPath, n)
		}
		return predicate{kind: predPosition, pos: n}, nil
	}

	kind := predChild
	rest := body
	if rest[0] == '@' {
		kind = predAttr
		rest = rest[1:]
	}
	end := scanName(rest, 0)
	if end == 0 {
		return predicate{}, fmt.Errorf("%w: bad predicate [%s]", ErrInvalidPath, body)
	}
	pred := predicate{kind: kind, name: rest[:end]}

	rest = strings.TrimSpace(rest[end:])
	if rest == "" {
		return pred, nil
	}
	if rest[0] != '=' {
		return predicate{}, fmt.Errorf("%w: bad predicate [%s]", ErrInvalidPath, body)
	}
	lit := strings.TrimSpace(rest[1:])
	if len(lit) < 2 || (lit[0] != '\'' && lit[0] != '"') || lit[len(lit)-1] != lit[0] {
		return predicate{}, fmt.Errorf("%w: expected quoted literal in [%s]", ErrInvalidPath, body)
	}
	pred.value = lit[1 : len(lit)-1]
	pred.hasValue = true
	return pred, nil
}

// Select evaluates the path against n and returns matching nodes in
// document order.
func (p *Path) Select(n *Node) []*Node {
	if n == nil {
		return nil
	}

	top := n.Root()
	if !top.IsDocument() {
		// Give bare trees a document above their root so that /root
		// matches.
		top = &Node{name: DocumentName, children: []*Node{top}}
	}
	start := n
	if p.absolute {
		if len(p.steps) == 0 {
			if de := top.DocumentElement(); de != nil {
				return []*Node{de}
			}
			return nil
		}
		start = top
	}

	order := make(map[*Node]int)
	i := 0
	top.walk(func(d *Node) {
		order[d] = i
		i++
	})

	ctx := []*Node{start}
	for _, s := range p.steps {
		ctx = applyStep(ctx, s, order)
		if len(ctx) == 0 {
			break
		}
	}
	return ctx
}

func applyStep(ctx []*Node, s step, order map[*Node]int) []*Node {
	seen := make(map[*Node]bool)
	var out []*Node
	add := func(nodes []*Node) {
		for _, n := range nodes {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}

	for _, n := range ctx {
		switch s.axis {
		case axisDescendantOrSelf:
			n.walk(func(d *Node) { add([]*Node{d}) })
		case axisSelf:
			add(filter([]*Node{n}, s))
		case axisParent:
			if n.parent != nil {
				add(filter([]*Node{n.parent}, s))
			}
		default:
			add(filter(n.children, s))
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return order[out[a]] < order[out[b]]
	})
	return out
}

// filter keeps the candidates that match the step name and predicates.
// Positional predicates count within the candidate group.
func filter(candidates []*Node, s step) []*Node {
	group := make([]*Node, 0, len(candidates))
	for _, c := range candidates {
		if matchName(c, s.name) {
			group = append(group, c)
		}
	}
	for _, pred := range s.preds {
		group = applyPredicate(group, pred)
	}
	return group
}

func matchName(n *Node, name string) bool {
	switch name {
	case "":
		return true
	case "*":
		return !n.IsDocument()
	default:
		return n.name == name
	}
}

func applyPredicate(group []*Node, pred predicate) []*Node {
	switch pred.kind {
	case predPosition:
		if pred.pos > len(group) {
			return nil
		}
		return []*Node{group[pred.pos-1]}
	case predLast:
		if len(group) == 0 {
			return nil
		}
		return []*Node{group[len(group)-1]}
	}

	var out []*Node
	for _, n := range group {
		if matchPredicate(n, pred) {
			out = append(out, n)
		}
	}
	return out
}

func matchPredicate(n *Node, pred predicate) bool {
	if pred.kind == predAttr {
		v, ok := n.Attr(pred.name)
		return ok && (!pred.hasValue || v == pred.value)
	}
	for _, c := range n.children {
		if c.name == pred.name && (!pred.hasValue || c.InnerText() == pred.value) {
			return true
		}
	}
	return false
}

// Select evaluates a path expression with n as the context node.
func (n *Node) Select(expr string) ([]*Node, error) {
	if n == nil {
		return nil, ErrNilNode
	}
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return p.Select(n), nil
}

// SelectFirst returns the first node matched by expr, or nil.
func (n *Node) SelectFirst(expr string) (*Node, error) {
	nodes, err := n.Select(expr)
	if err != nil || len(nodes) == 0 {
		return nil, err
	}
	return nodes[0], nil
}
