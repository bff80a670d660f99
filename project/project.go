package project

import (
	"github.com/tsawler/treetab/model"
)

// Validator decides how one cell of a row appears in the output document.
// It receives the document built so far, the column name, the cell value,
// and the row being projected. When keep is true, out is stored under key;
// later writes to the same key replace earlier ones.
type Validator func(doc *model.Document, column string, value any, row *model.Row) (keep bool, key string, out any)

// KeepAll is the default validator: every column is kept under its own
// name, with the cell's string form as the value. Null cells become "".
func KeepAll(_ *model.Document, column string, value any, _ *model.Row) (bool, string, any) {
	return true, column, model.FormatValue(value)
}

// KeepValues keeps every column under its own name with the raw cell
// value, so null cells stay null.
func KeepValues(_ *model.Document, column string, value any, _ *model.Row) (bool, string, any) {
	return true, column, value
}

// SkipNull wraps v so that null cells are dropped before v sees them.
func SkipNull(v Validator) Validator {
	if v == nil {
		v = KeepAll
	}
	return func(doc *model.Document, column string, value any, row *model.Row) (bool, string, any) {
		if value == nil {
			return false, "", nil
		}
		return v(doc, column, value, row)
	}
}

// Rename wraps v so that columns found in names are stored under the
// mapped key. Columns not in names keep the key chosen by v.
func Rename(names map[string]string, v Validator) Validator {
	if v == nil {
		v = KeepAll
	}
	return func(doc *model.Document, column string, value any, row *model.Row) (bool, string, any) {
		keep, key, out := v(doc, column, value, row)
		if to, ok := names[column]; ok && keep {
			key = to
		}
		return keep, key, out
	}
}

// Row projects a row into a document. Columns are visited in table order.
// A nil validator means KeepAll.
func Row(row *model.Row, v Validator) *model.Document {
	if v == nil {
		v = KeepAll
	}
	doc := model.NewDocument()
	for i, col := range row.Table().Columns() {
		keep, key, out := v(doc, col.Name, row.GetAt(i), row)
		if keep {
			doc.Set(key, out)
		}
	}
	return doc
}

// Rows projects each row in order.
func Rows(rows []*model.Row, v Validator) []*model.Document {
	docs := make([]*model.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, Row(row, v))
	}
	return docs
}

// Table projects every row of t in order.
func Table(t *model.Table, v Validator) []*model.Document {
	return Rows(t.Rows(), v)
}
