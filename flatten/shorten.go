package flatten

import (
	"fmt"
	"strings"

	"github.com/tsawler/treetab/model"
)

// Shorten strips depth leading segments from every column name of t.
// Each round removes everything up to and including the first separator;
// a name without a separator is left alone. An empty separator means
// DefaultSeparator.
//
// Column matching during flattening relies on the full names, so call
// Shorten only after all rows are built. If two shortened names would
// collide, t is left unchanged and the error wraps
// model.ErrDuplicateColumn.
func Shorten(t *model.Table, depth int, separator string) error {
	if separator == "" {
		separator = DefaultSeparator
	}

	names := t.ColumnNames()
	for i, name := range names {
		names[i] = ShortenName(name, depth, separator)
	}
	if err := t.SetColumnNames(names); err != nil {
		return fmt.Errorf("shortening column names: %w", err)
	}
	return nil
}

// ShortenName applies depth rounds of prefix stripping to a single name.
func ShortenName(name string, depth int, separator string) string {
	if separator == "" {
		separator = DefaultSeparator
	}
	for i := 0; i < depth; i++ {
		k := strings.Index(name, separator)
		if k < 0 {
			break
		}
		name = name[k+len(separator):]
	}
	return name
}
