package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateColumn is returned when a column name is already in use.
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrColumnNotFound is returned when a column name does not exist.
	ErrColumnNotFound = errors.New("column not found")
)

// Column describes a single table column.
type Column struct {
	Name    string
	Ordinal int // Position in the table (0-indexed)
}

// Table holds an ordered set of uniquely named columns and an ordered set
// of rows. Columns may be added at any time; rows created before a column
// existed read nil (the null marker) for it.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    []*Row
}

// NewTable creates an empty table with no columns and no rows.
func NewTable() *Table {
	return &Table{
		columns: make([]*Column, 0),
		index:   make(map[string]int),
		rows:    make([]*Row, 0),
	}
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// ColCount returns the number of columns
func (t *Table) ColCount() int {
	return len(t.columns)
}

// Columns returns a copy of the column definitions in insertion order.
func (t *Table) Columns() []Column {
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = *c
	}
	return cols
}

// ColumnNames returns the column names in insertion order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the ordinal of the named column.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AddColumn appends a new column and returns its ordinal.
func (t *Table) AddColumn(name string) (int, error) {
	if _, ok := t.index[name]; ok {
		return 0, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	col := &Column{Name: name, Ordinal: len(t.columns)}
	t.columns = append(t.columns, col)
	t.index[name] = col.Ordinal
	return col.Ordinal, nil
}

// EnsureColumn returns the ordinal of the named column, adding it first
// when it does not exist yet.
func (t *Table) EnsureColumn(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	i, _ := t.AddColumn(name)
	return i
}

// RenameColumn changes the name of the column at ordinal i.
func (t *Table) RenameColumn(i int, name string) error {
	if i < 0 || i >= len(t.columns) {
		return fmt.Errorf("col index %d out of bounds", i)
	}
	col := t.columns[i]
	if col.Name == name {
		return nil
	}
	if _, ok := t.index[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	delete(t.index, col.Name)
	col.Name = name
	t.index[name] = i
	return nil
}

// SetColumnNames replaces every column name at once. The names must be
// unique; on error no column is renamed.
func (t *Table) SetColumnNames(names []string) error {
	if len(names) != len(t.columns) {
		return fmt.Errorf("got %d names for %d columns", len(names), len(t.columns))
	}
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := index[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		index[name] = i
	}
	for i, name := range names {
		t.columns[i].Name = name
	}
	t.index = index
	return nil
}

// NewRow creates a row bound to this table. The row is not part of the
// table until it is passed to AddRow.
func (t *Table) NewRow() *Row {
	return &Row{
		table: t,
		cells: make([]any, len(t.columns)),
	}
}

// AddRow appends a row created by NewRow.
func (t *Table) AddRow(r *Row) error {
	if r.table != t {
		return fmt.Errorf("row belongs to a different table")
	}
	t.rows = append(t.rows, r)
	return nil
}

// Rows returns the rows in insertion order.
func (t *Table) Rows() []*Row {
	return t.rows
}

// GetRow returns the row at the given index (0-indexed)
func (t *Table) GetRow(i int) *Row {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}

// GetText returns the table as tab separated text, header row first.
func (t *Table) GetText() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.ColumnNames(), "\t"))
	sb.WriteString("\n")
	for _, row := range t.rows {
		for j := range t.columns {
			sb.WriteString(FormatValue(row.GetAt(j)))
			if j < len(t.columns)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToMarkdown converts the table to markdown format
func (t *Table) ToMarkdown() string {
	if len(t.columns) == 0 {
		return ""
	}

	var sb strings.Builder

	// Header row
	for _, col := range t.columns {
		sb.WriteString("| ")
		sb.WriteString(escapeMarkdown(col.Name))
		sb.WriteString(" ")
	}
	sb.WriteString("|\n")

	// Separator
	for range t.columns {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")

	// Data rows
	for _, row := range t.rows {
		for j := range t.columns {
			sb.WriteString("| ")
			sb.WriteString(escapeMarkdown(FormatValue(row.GetAt(j))))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	return sb.String()
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}

// ToCSV converts the table to CSV format. The first line holds the
// column names; null cells are written as empty fields.
func (t *Table) ToCSV() string {
	var sb strings.Builder
	writeCSVLine(&sb, t.ColumnNames())
	for _, row := range t.rows {
		fields := make([]string, len(t.columns))
		for j := range t.columns {
			fields[j] = FormatValue(row.GetAt(j))
		}
		writeCSVLine(&sb, fields)
	}
	return sb.String()
}

func writeCSVLine(sb *strings.Builder, fields []string) {
	for j, text := range fields {
		// Escape quotes and wrap in quotes if necessary
		if strings.ContainsAny(text, ",\"\n\r") {
			text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
		}
		sb.WriteString(text)
		if j < len(fields)-1 {
			sb.WriteString(",")
		}
	}
	sb.WriteString("\n")
}

// Row holds one cell per column of its table.
type Row struct {
	table *Table
	cells []any
}

// Table returns the table that owns the row.
func (r *Row) Table() *Table {
	return r.table
}

// GetAt returns the cell at column ordinal i. Cells of columns added
// after the row was created read as nil.
func (r *Row) GetAt(i int) any {
	if i < 0 || i >= len(r.cells) {
		return nil
	}
	return r.cells[i]
}

// SetAt sets the cell at column ordinal i.
func (r *Row) SetAt(i int, v any) error {
	if i < 0 || i >= len(r.table.columns) {
		return fmt.Errorf("col index %d out of bounds", i)
	}
	if i >= len(r.cells) {
		grown := make([]any, len(r.table.columns))
		copy(grown, r.cells)
		r.cells = grown
	}
	r.cells[i] = v
	return nil
}

// Get returns the cell of the named column.
func (r *Row) Get(name string) (any, error) {
	i, ok := r.table.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return r.GetAt(i), nil
}

// Set sets the cell of the named column.
func (r *Row) Set(name string, v any) error {
	i, ok := r.table.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return r.SetAt(i, v)
}

// IsNull reports whether the named column holds the null marker.
// Unknown columns are null.
func (r *Row) IsNull(name string) bool {
	v, err := r.Get(name)
	return err != nil || v == nil
}
