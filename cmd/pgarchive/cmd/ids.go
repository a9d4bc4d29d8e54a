package cmd

import (
	"strconv"
	"strings"
)

// parseIDs splits a comma-separated --ids value into primary-key values,
// parsing each as an int64 when possible and falling back to the raw
// string otherwise (UUID and other non-numeric primary keys).
func parseIDs(raw string) []any {
	parts := strings.Split(raw, ",")
	ids := make([]any, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.ParseInt(part, 10, 64); err == nil {
			ids = append(ids, n)
			continue
		}
		ids = append(ids, part)
	}
	return ids
}
