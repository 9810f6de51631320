package metrics

import "strings"

// norm keeps label values low-cardinality and consistent.
func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
