// Package flatten turns markup trees into tables.
//
// Each selected root becomes one row. Walking a root, every attribute and
// every non-empty leaf text becomes a cell whose column name is the path
// from the root joined with "-":
//
//	<book id="bk101">          book-id       = bk101
//	  <title>Go</title>        book-title    = Go
//	  <tag>a</tag>             book-tag      = a
//	  <tag>b</tag>             book-tag-2    = b
//	</book>
//
// The second and later same-named siblings get a -n suffix. Columns are
// created the first time any row produces a name and are reused by exact
// name for every later row, so rows built before a column appeared hold
// null for it. Distinct paths that produce the same string share a column.
//
// MaxDepth limits how many levels below each root are expanded. At depth
// 0 only the root's attributes and, for a leaf root, its text are kept.
//
// [Shorten] strips leading path segments after the table is complete:
//
//	table := flatten.Flatten(books, flatten.DefaultMaxDepth)
//	err := flatten.Shorten(table, 1, flatten.DefaultSeparator) // book-id -> id
package flatten
