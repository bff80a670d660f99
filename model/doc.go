// Package model provides the in-memory containers shared by the flattening
// and projection packages.
//
// # Tables
//
// A [Table] is an ordered set of uniquely named [Column] values plus an
// ordered set of [Row] values. Columns can be added after rows exist:
//
//	t := model.NewTable()
//	row := t.NewRow()
//	row.SetAt(t.EnsureColumn("book-id"), "bk101")
//	t.AddRow(row)
//
// Cells of columns added after a row was created read as nil, the null
// marker. Use [DBValue] to normalize values before storing them: empty
// strings and nil are both stored as nil.
//
// Tables export to CSV, Markdown, and tab separated text with
// [Table.ToCSV], [Table.ToMarkdown], and [Table.GetText].
//
// # Documents
//
// A [Document] is a structured object with ordered keys. Later writes to
// a key replace earlier ones, and JSON encoding preserves insertion order:
//
//	doc := model.NewDocument()
//	doc.Set("id", "bk101")
//	data, _ := json.Marshal(doc)
package model
