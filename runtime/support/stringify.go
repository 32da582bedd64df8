package support

import (
	"fmt"
	"sort"
	"strings"
)

// Stringer is implemented by runtime values (logical variables, constraint
// tuples) that know how to render themselves for trace output without
// reflection.
type Stringer interface {
	String() string
}

// Stringify renders an arbitrary emitted-code value the way trace output
// and index keys need it: stable, deterministic, and independent of Go's
// map iteration order for composite values.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "<nil>"
	case Stringer:
		return val.String()
	case string:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, e := range val {
			parts[i] = Stringify(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + Stringify(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", val)
	}
}
