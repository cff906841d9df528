package domain

import "strconv"

// ParseID parses an external decimal identifier into a numeric id. External
// callers routinely probe with arbitrary strings, so a malformed identifier
// reports ok=false instead of an error; lookups translate that to "not found".
func ParseID(identifier string) (int64, bool) {
	if identifier == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// FormatID renders a numeric id in the decimal form used across the store
// boundary.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
