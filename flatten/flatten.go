package flatten

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/tsawler/treetab/markup"
	"github.com/tsawler/treetab/model"
)

const (
	// DefaultMaxDepth is the number of nesting levels expanded below each
	// root when no depth is given.
	DefaultMaxDepth = 1

	// DefaultSeparator joins path segments in column names.
	DefaultSeparator = "-"
)

// Node is the shape of tree the engine walks. *markup.Node satisfies
// Node[*markup.Node].
type Node[N any] interface {
	Name() string
	Attrs() []markup.Attr
	Children() []N
	Text() string
}

// Options configures a flattening run.
type Options struct {
	// MaxDepth bounds how many levels of children below each root are
	// expanded into columns. Negative values are treated as 0.
	MaxDepth int

	// ShortenDepth, when positive, strips that many leading path segments
	// from every column name once all rows are built.
	ShortenDepth int

	// Separator used by ShortenDepth. Empty means DefaultSeparator.
	Separator string

	// Logger receives debug records about discovered columns. Nil
	// discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the options used by Flatten.
func DefaultOptions() Options {
	return Options{
		MaxDepth:  DefaultMaxDepth,
		Separator: DefaultSeparator,
	}
}

// Flatten builds a table with one row per root. Columns are discovered
// while walking and shared by every row whose path produces the same
// column name.
func Flatten[N Node[N]](roots []N, maxDepth int) *model.Table {
	table, _ := Run(roots, Options{MaxDepth: maxDepth})
	return table
}

// Run flattens roots with the given options. The only error comes from
// shortening, when two shortened names collide; the unshortened table is
// returned alongside it.
func Run[N Node[N]](roots []N, opts Options) (*model.Table, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	depth := opts.MaxDepth
	if depth < 0 {
		depth = 0
	}

	table := model.NewTable()
	for i, root := range roots {
		before := table.ColCount()

		row := table.NewRow()
		AddNode(row, root, "", 1, depth)
		_ = table.AddRow(row)

		if added := table.ColCount() - before; added > 0 {
			log.Debug("discovered columns",
				"row", i,
				"added", added,
				"columns", table.ColumnNames()[before:])
		}
	}
	log.Debug("flattened", "rows", table.RowCount(), "columns", table.ColCount(), "max_depth", depth)

	if opts.ShortenDepth > 0 {
		if err := Shorten(table, opts.ShortenDepth, opts.Separator); err != nil {
			return table, err
		}
	}
	return table, nil
}

// AddNode writes node into row. prefix is the path of the parent, index
// the 1-based position of node among same-named siblings seen so far, and
// depth the number of child levels still to expand.
//
// Attributes always produce cells. Children are visited only while depth
// is positive. A leaf produces a cell for its text; an empty leaf produces
// nothing.
func AddNode[N Node[N]](row *model.Row, node N, prefix string, index, depth int) {
	segment := Segment(node.Name(), index)

	for _, attr := range node.Attrs() {
		setCell(row, Join(prefix, segment, attr.Name), attr.Value)
	}

	children := node.Children()
	if len(children) > 0 {
		if depth <= 0 {
			return
		}
		path := Join(prefix, segment)
		seen := make(map[string]int, len(children))
		for _, child := range children {
			name := child.Name()
			seen[name]++
			AddNode(row, child, path, seen[name], depth-1)
		}
		return
	}

	if text := node.Text(); text != "" {
		setCell(row, Join(prefix, segment), text)
	}
}

func setCell(row *model.Row, column string, value string) {
	i := row.Table().EnsureColumn(column)
	_ = row.SetAt(i, model.DBValue(value))
}

// Segment returns the path segment of the index-th same-named sibling:
// the bare name for the first, name-index for later ones.
func Segment(name string, index int) string {
	if index <= 1 {
		return name
	}
	return name + DefaultSeparator + strconv.Itoa(index)
}

// Join concatenates non-empty path parts with DefaultSeparator.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, DefaultSeparator)
}
