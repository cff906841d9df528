package repository

import "encoding/json"

// Collection and map fields are persisted as JSON in plain text columns.
// Reads are deliberately lenient: a missing or corrupt column decodes to an
// empty value instead of failing the row, so one bad row can never take down
// a listing operation. Corrupt data surfaces indirectly as "no scopes" or
// "no redirect uris", which the runtime treats as insufficient permission.

// serializeStringArray encodes values as a JSON array, or the empty string
// when there is nothing to store.
func serializeStringArray(values []string) string {
	if len(values) == 0 {
		return ""
	}
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(data)
}

// deserializeStringArray decodes a JSON array column. Empty and corrupt
// input both decode to an empty slice, never nil.
func deserializeStringArray(text string) []string {
	if text == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(text), &values); err != nil || values == nil {
		return []string{}
	}
	return values
}

// serializeProperties encodes an opaque metadata map as a JSON object, or
// the empty string when there is nothing to store. encoding/json emits map
// keys in sorted order, so the stored form is deterministic.
func serializeProperties(props map[string]json.RawMessage) string {
	if len(props) == 0 {
		return ""
	}
	data, err := json.Marshal(props)
	if err != nil {
		return ""
	}
	return string(data)
}

// deserializeProperties decodes a JSON object column. Empty and corrupt
// input both decode to an empty map, never nil.
func deserializeProperties(text string) map[string]json.RawMessage {
	if text == "" {
		return map[string]json.RawMessage{}
	}
	var props map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &props); err != nil || props == nil {
		return map[string]json.RawMessage{}
	}
	return props
}

// hasAllScopes reports whether the stored scopes column contains every
// required scope. Comparison is case-sensitive; an empty requirement is
// vacuously satisfied.
func hasAllScopes(storedJSON string, required []string) bool {
	return scopesContainAll(deserializeStringArray(storedJSON), required)
}

// scopesContainAll reports whether scopes is a superset of required.
func scopesContainAll(scopes, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(scopes) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}

// containsString reports whether values contains v, comparing byte-for-byte.
func containsString(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
