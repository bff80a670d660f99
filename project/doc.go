// Package project converts table rows into structured documents.
//
// A [Validator] is called once per column and decides whether the cell is
// kept, under which key, and with which value. It can read the document
// built so far and the whole row, which lets it reshape values or nest
// several columns under one key:
//
//	docs := project.Table(table, func(doc *model.Document, col string, v any, row *model.Row) (bool, string, any) {
//	    if col == "book-price" {
//	        return false, "", nil
//	    }
//	    return true, strings.TrimPrefix(col, "book-"), model.FormatValue(v)
//	})
//
// Passing a nil validator selects [KeepAll].
package project
