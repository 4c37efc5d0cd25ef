// Package test provides helpers for naming table-driven subtests.
package test

import (
	"fmt"
	"strings"
)

// Name joins field=value pairs with slashes. Zero numbers, empty strings and
// false booleans are left out; a true boolean is written as the bare field name.
func Name(fields []string, values ...any) string {
	if len(fields) != len(values) {
		panic("fields and values must have the same length")
	}
	parts := make([]string, 0, len(fields))
	for i, f := range fields {
		switch v := values[i].(type) {
		case string:
			if v != "" {
				parts = append(parts, f+"="+v)
			}
		case bool:
			if v {
				parts = append(parts, f)
			}
		case int:
			if v != 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", f, v))
			}
		case int64:
			if v != 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", f, v))
			}
		case uint64:
			if v != 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", f, v))
			}
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", f, v))
		}
	}
	return strings.Join(parts, "/")
}
