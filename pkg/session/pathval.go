package session

import "strings"

// pathGet resolves a dot path inside nested maps. Missing segments and
// non-map intermediates yield nil.
func pathGet(data map[string]any, path string) any {
	segments := strings.Split(path, ".")
	var current any = data
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return current
}

// pathSet writes a value at a dot path, creating intermediate maps as
// needed. A non-map intermediate is replaced by a map.
func pathSet(data map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := data
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// pathUnset removes the value at a dot path. Missing paths are a no-op;
// the return reports whether anything was removed.
func pathUnset(data map[string]any, path string) bool {
	segments := strings.Split(path, ".")
	current := data
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			return false
		}
		current = next
	}
	last := segments[len(segments)-1]
	if _, ok := current[last]; !ok {
		return false
	}
	delete(current, last)
	return true
}
