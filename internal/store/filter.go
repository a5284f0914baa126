package store

import (
	"fmt"
	"strings"
)

// Filter is a collection-store filter expression. The store's language
// supports equality, substring match (~) and and/or composition. Matching
// there is case-sensitive: callers needing case-insensitive comparison must
// fetch broadly and post-filter in memory.
type Filter string

func Eq(field string, v any) Filter {
	return Filter(fmt.Sprintf("%s = %s", field, literal(v)))
}

func Gte(field string, v any) Filter {
	return Filter(fmt.Sprintf("%s >= %s", field, literal(v)))
}

// Like matches records whose field contains v as a substring.
func Like(field string, v string) Filter {
	return Filter(fmt.Sprintf("%s ~ %s", field, literal(v)))
}

func And(filters ...Filter) Filter {
	return join(filters, " && ")
}

func Or(filters ...Filter) Filter {
	return join(filters, " || ")
}

func join(filters []Filter, sep string) Filter {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		if f != "" {
			parts = append(parts, string(f))
		}
	}
	if len(parts) == 1 {
		return Filter(parts[0])
	}
	return Filter("(" + strings.Join(parts, sep) + ")")
}

func literal(v any) string {
	switch t := v.(type) {
	case string:
		r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
		return `"` + r.Replace(t) + `"`
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
