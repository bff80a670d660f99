package flatten

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/treetab/markup"
	"github.com/tsawler/treetab/model"
)

func node(name string, attrs ...string) *markup.Node {
	n := markup.NewNode(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		n.SetAttr(attrs[i], attrs[i+1])
	}
	return n
}

func leaf(name, text string) *markup.Node {
	return markup.NewNode(name).SetText(text)
}

func cell(t *testing.T, table *model.Table, row int, column string) any {
	t.Helper()
	r := table.GetRow(row)
	if r == nil {
		t.Fatalf("row %d does not exist", row)
	}
	v, err := r.Get(column)
	if err != nil {
		t.Fatalf("row %d: %v", row, err)
	}
	return v
}

// ============================================================================
// Flatten Tests
// ============================================================================

func TestFlattenEmptyInput(t *testing.T) {
	table := Flatten([]*markup.Node(nil), DefaultMaxDepth)
	if table.RowCount() != 0 || table.ColCount() != 0 {
		t.Errorf("got %d rows, %d cols; want 0, 0", table.RowCount(), table.ColCount())
	}
}

func TestFlattenOneRowPerRoot(t *testing.T) {
	roots := []*markup.Node{
		node("item", "id", "1"),
		node("item"),
		leaf("item", ""),
		node("other", "x", "y"),
	}

	table := Flatten(roots, DefaultMaxDepth)
	if table.RowCount() != len(roots) {
		t.Errorf("RowCount() = %d, want %d", table.RowCount(), len(roots))
	}
}

func TestFlattenSiblingIndexing(t *testing.T) {
	root := node("p").Append(leaf("x", "1"), leaf("y", "2"), leaf("x", "3"))

	table := Flatten([]*markup.Node{root}, 1)

	want := []string{"p-x", "p-y", "p-x-2"}
	if diff := cmp.Diff(want, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if v := cell(t, table, 0, "p-x-2"); v != "3" {
		t.Errorf("p-x-2 = %v, want 3", v)
	}
}

func TestFlattenSiblingAttributesUseIndex(t *testing.T) {
	root := node("r").Append(node("x", "k", "a"), node("x", "k", "b"))

	table := Flatten([]*markup.Node{root}, 1)

	want := []string{"r-x-k", "r-x-2-k"}
	if diff := cmp.Diff(want, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenZeroDepth(t *testing.T) {
	root := node("n", "a", "1").Append(leaf("c", "txt"))

	table := Flatten([]*markup.Node{root}, 0)

	if diff := cmp.Diff([]string{"n-a"}, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if v := cell(t, table, 0, "n-a"); v != "1" {
		t.Errorf("n-a = %v, want 1", v)
	}
	if table.HasColumn("n-c") {
		t.Error("child column created at depth 0")
	}
}

func TestFlattenNegativeDepthIsZero(t *testing.T) {
	root := node("n", "a", "1").Append(leaf("c", "txt"))

	table := Flatten([]*markup.Node{root}, -3)

	if diff := cmp.Diff([]string{"n-a"}, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenLeafRoot(t *testing.T) {
	table := Flatten([]*markup.Node{leaf("v", "x")}, 0)

	if v := cell(t, table, 0, "v"); v != "x" {
		t.Errorf("v = %v, want x", v)
	}
}

func TestFlattenEmptyLeafIsSkipped(t *testing.T) {
	root := node("r").Append(leaf("empty", ""), leaf("full", "v"))

	table := Flatten([]*markup.Node{root}, 1)

	if table.HasColumn("r-empty") {
		t.Error("column created for empty leaf")
	}
	if diff := cmp.Diff([]string{"r-full"}, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenEmptyLeafLeavesExistingCell(t *testing.T) {
	table := model.NewTable()
	row := table.NewRow()
	table.AddRow(row)

	AddNode(row, leaf("v", "set"), "", 1, 0)
	AddNode(row, leaf("v", ""), "", 1, 0)

	if v, _ := row.Get("v"); v != "set" {
		t.Errorf("v = %v, want set", v)
	}
	if table.ColCount() != 1 {
		t.Errorf("ColCount() = %d, want 1", table.ColCount())
	}
}

func TestFlattenEmptyAttributeIsNull(t *testing.T) {
	table := Flatten([]*markup.Node{node("r", "a", "")}, 1)

	if !table.HasColumn("r-a") {
		t.Fatal("empty attribute should still create a column")
	}
	if v := cell(t, table, 0, "r-a"); v != nil {
		t.Errorf("r-a = %v, want nil", v)
	}
}

func TestFlattenDepthBudget(t *testing.T) {
	build := func() *markup.Node {
		return node("r").Append(
			node("g", "k", "v").Append(leaf("i", "deep")),
		)
	}

	tests := []struct {
		name  string
		depth int
		want  []string
	}{
		{"depth 0", 0, nil},
		{"depth 1", 1, []string{"r-g-k"}},
		{"depth 2", 2, []string{"r-g-k", "r-g-i"}},
		{"depth 5", 5, []string{"r-g-k", "r-g-i"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := Flatten([]*markup.Node{build()}, tt.depth)
			got := table.ColumnNames()
			if len(got) == 0 {
				got = nil
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("columns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlattenSiblingCountersArePerParent(t *testing.T) {
	root := node("r").Append(
		node("g").Append(leaf("x", "1")),
		node("g").Append(leaf("x", "2"), leaf("x", "3")),
	)

	table := Flatten([]*markup.Node{root}, 2)

	want := []string{"r-g-x", "r-g-2-x", "r-g-2-x-2"}
	if diff := cmp.Diff(want, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenColumnsSharedAcrossRows(t *testing.T) {
	roots := []*markup.Node{
		node("book", "id", "1").Append(leaf("title", "A")),
		node("book", "id", "2").Append(leaf("price", "9")),
		node("book", "id", "3").Append(leaf("title", "C"), leaf("price", "")),
	}

	table := Flatten(roots, 1)

	want := []string{"book-id", "book-title", "book-price"}
	if diff := cmp.Diff(want, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	if v := cell(t, table, 0, "book-price"); v != nil {
		t.Errorf("row 0 price = %v, want nil", v)
	}
	if v := cell(t, table, 1, "book-title"); v != nil {
		t.Errorf("row 1 title = %v, want nil", v)
	}
	if v := cell(t, table, 2, "book-title"); v != "C" {
		t.Errorf("row 2 title = %v, want C", v)
	}
	if v := cell(t, table, 2, "book-price"); v != nil {
		t.Errorf("row 2 price = %v, want nil", v)
	}
}

func TestFlattenColumnsGrowMonotonically(t *testing.T) {
	roots := []*markup.Node{
		node("a", "x", "1"),
		node("a").Append(leaf("y", "2")),
		node("a", "x", "3"),
		node("a", "z", "4").Append(leaf("y", "5")),
	}

	table := model.NewTable()
	prev := 0
	for i, root := range roots {
		row := table.NewRow()
		AddNode(row, root, "", 1, 1)
		table.AddRow(row)
		if table.ColCount() < prev {
			t.Fatalf("column count shrank at row %d: %d -> %d", i, prev, table.ColCount())
		}
		prev = table.ColCount()
	}
	if diff := cmp.Diff([]string{"a-x", "a-y", "a-z"}, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenNameCollisionsMerge(t *testing.T) {
	root := node("r").Append(
		leaf("a-b", "literal"),
		node("a").Append(leaf("b", "nested")),
	)

	table := Flatten([]*markup.Node{root}, 2)

	if diff := cmp.Diff([]string{"r-a-b"}, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if v := cell(t, table, 0, "r-a-b"); v != "nested" {
		t.Errorf("r-a-b = %v, want nested", v)
	}
}

func TestFlattenParsedXML(t *testing.T) {
	const src = `<catalog>
  <book id="bk101">
    <author>Gambardella</author>
    <title>XML Guide</title>
    <tag>xml</tag>
    <tag>guide</tag>
  </book>
  <book id="bk102">
    <author>Ralls</author>
    <title/>
  </book>
</catalog>`

	doc, err := markup.ParseXMLString(src)
	if err != nil {
		t.Fatal(err)
	}
	books, err := doc.Select("/catalog/book")
	if err != nil {
		t.Fatal(err)
	}

	table := Flatten(books, DefaultMaxDepth)

	want := []string{"book-id", "book-author", "book-title", "book-tag", "book-tag-2"}
	if diff := cmp.Diff(want, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if v := cell(t, table, 1, "book-title"); v != nil {
		t.Errorf("empty title = %v, want nil", v)
	}
	if v := cell(t, table, 0, "book-tag-2"); v != "guide" {
		t.Errorf("book-tag-2 = %v, want guide", v)
	}
}

// pair is a minimal tree used to check that any type can be flattened.
type pair struct {
	key   string
	value string
	kids  []pair
}

func (p pair) Name() string         { return p.key }
func (p pair) Attrs() []markup.Attr { return nil }
func (p pair) Children() []pair     { return p.kids }
func (p pair) Text() string         { return p.value }

func TestFlattenCustomNodeType(t *testing.T) {
	roots := []pair{
		{key: "cfg", kids: []pair{{key: "host", value: "db"}, {key: "port", value: "5432"}}},
	}

	table := Flatten(roots, 1)

	if diff := cmp.Diff([]string{"cfg-host", "cfg-port"}, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

// ============================================================================
// Run Tests
// ============================================================================

func TestRunShortensAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	roots := []*markup.Node{
		node("item", "id", "1").Append(leaf("name", "a")),
		node("item", "id", "2").Append(leaf("size", "L")),
	}

	opts := DefaultOptions()
	opts.ShortenDepth = 1
	opts.Logger = logger

	table, err := Run(roots, opts)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if diff := cmp.Diff([]string{"id", "name", "size"}, table.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	out := buf.String()
	if strings.Count(out, "discovered columns") != 2 {
		t.Errorf("expected two discovery records, got:\n%s", out)
	}
	if !strings.Contains(out, "flattened") {
		t.Errorf("missing summary record:\n%s", out)
	}
}

func TestRunShortenCollision(t *testing.T) {
	root := node("r").Append(
		node("a").Append(leaf("x", "1")),
		node("b").Append(leaf("x", "2")),
	)

	table, err := Run([]*markup.Node{root}, Options{MaxDepth: 2, ShortenDepth: 2})
	if !errors.Is(err, model.ErrDuplicateColumn) {
		t.Fatalf("error = %v, want ErrDuplicateColumn", err)
	}
	if diff := cmp.Diff([]string{"r-a-x", "r-b-x"}, table.ColumnNames()); diff != "" {
		t.Errorf("columns changed on failure (-want +got):\n%s", diff)
	}
}

// ============================================================================
// Shorten Tests
// ============================================================================

func TestShortenRepeated(t *testing.T) {
	table := model.NewTable()
	table.EnsureColumn("A-B-C")

	steps := []string{"B-C", "C", "C"}
	for i, want := range steps {
		if err := Shorten(table, 1, "-"); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got := table.ColumnNames()[0]; got != want {
			t.Errorf("step %d: name = %q, want %q", i, got, want)
		}
	}
}

func TestShortenName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		depth     int
		separator string
		expected  string
	}{
		{"one round", "a-b-c", 1, "-", "b-c"},
		{"two rounds", "a-b-c", 2, "-", "c"},
		{"more rounds than separators", "a-b", 5, "-", "b"},
		{"no separator", "abc", 1, "-", "abc"},
		{"zero depth", "a-b", 0, "-", "a-b"},
		{"default separator", "a-b", 1, "", "b"},
		{"multi-char separator", "a::b::c", 1, "::", "b::c"},
		{"leading separator", "-a", 1, "-", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortenName(tt.input, tt.depth, tt.separator); got != tt.expected {
				t.Errorf("ShortenName(%q, %d, %q) = %q, want %q",
					tt.input, tt.depth, tt.separator, got, tt.expected)
			}
		})
	}
}

func TestShortenKeepsCells(t *testing.T) {
	root := node("book", "id", "7").Append(leaf("title", "T"))
	table := Flatten([]*markup.Node{root}, 1)

	if err := Shorten(table, 1, ""); err != nil {
		t.Fatal(err)
	}
	if v := cell(t, table, 0, "title"); v != "T" {
		t.Errorf("title = %v, want T", v)
	}
	if v := cell(t, table, 0, "id"); v != "7" {
		t.Errorf("id = %v, want 7", v)
	}
}

// ============================================================================
// Helper Tests
// ============================================================================

func TestSegmentAndJoin(t *testing.T) {
	if got := Segment("x", 1); got != "x" {
		t.Errorf("Segment(x, 1) = %q", got)
	}
	if got := Segment("x", 0); got != "x" {
		t.Errorf("Segment(x, 0) = %q", got)
	}
	if got := Segment("x", 3); got != "x-3" {
		t.Errorf("Segment(x, 3) = %q", got)
	}
	if got := Join("", "a", "b"); got != "a-b" {
		t.Errorf("Join = %q", got)
	}
	if got := Join(); got != "" {
		t.Errorf("Join() = %q", got)
	}
}
