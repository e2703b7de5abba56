package sanitize

import (
	"fmt"
	"strconv"
	"strings"
)

// unsafeKeys are rejected outright by DotPath to avoid prototype-pollution
// style traversal into framework internals when walking attacker-controlled
// JSON blobs (Nuxt payloads, Next.js RSC chunks, JSON-LD).
var unsafeKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// DotPath walks decoded JSON (the output of encoding/json.Unmarshal into
// any) along a dotted path such as "data.0.article.title", rejecting any
// segment that names an unsafe key. Numeric segments index into slices.
func DotPath(v any, path string) (any, error) {
	if path == "" {
		return v, nil
	}
	cur := v
	for _, seg := range strings.Split(path, ".") {
		if unsafeKeys[seg] {
			return nil, fmt.Errorf("sanitize: unsafe path segment %q", seg)
		}
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, fmt.Errorf("sanitize: missing key %q", seg)
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("sanitize: invalid index %q", seg)
			}
			cur = node[idx]
		default:
			return nil, fmt.Errorf("sanitize: cannot descend into %T at %q", cur, seg)
		}
	}
	return cur, nil
}

// DotPathString is DotPath followed by a string type assertion, the common
// case for pulling a single field out of a hydration payload.
func DotPathString(v any, path string) (string, error) {
	val, err := DotPath(v, path)
	if err != nil {
		return "", err
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("sanitize: value at %q is %T, not string", path, val)
	}
	return s, nil
}
