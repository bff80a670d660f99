package model

import (
	"fmt"
	"strconv"
)

// DBValue normalizes a value for storage in a cell. Empty strings and nil
// both become nil, the null marker; every other value is stored as given.
func DBValue(v any) any {
	switch s := v.(type) {
	case nil:
		return nil
	case string:
		if s == "" {
			return nil
		}
	}
	return v
}

// FormatValue returns the string form of a cell value. The null marker
// formats as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
