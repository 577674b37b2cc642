package merge

import (
	"fmt"
	"strconv"
	"strings"

	"archrecon/internal/types"
)

// keyCandidates lists, per section, the fields that carry an item's identity in
// priority order. The structure section is a tree and has none.
var keyCandidates = map[types.Section][]string{
	types.SectionDatabase:  {"entity", "table_name", "name", "collection_name"},
	types.SectionEndpoints: {"path", "endpoint", "route"},
	types.SectionModules:   {"name"},
}

// KeyCandidates returns the identity fields for section in priority order.
func KeyCandidates(section types.Section) []string {
	c := keyCandidates[section]
	out := make([]string, len(c))
	copy(out, c)
	return out
}

// ResolveKey returns the lower-cased value of the first candidate field that is
// present and truthy on item. Identity is case-insensitive: "Login" and "login"
// name the same entity.
func ResolveKey(section types.Section, item types.Item) (string, bool) {
	if item == nil {
		return "", false
	}
	for _, field := range keyCandidates[section] {
		if s, ok := keyString(item[field]); ok {
			return strings.ToLower(s), true
		}
	}
	return "", false
}

func keyString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case bool:
		if !x {
			return "", false
		}
		return "true", true
	case float64:
		if x == 0 {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		if x == 0 {
			return "", false
		}
		return strconv.Itoa(x), true
	case int64:
		if x == 0 {
			return "", false
		}
		return strconv.FormatInt(x, 10), true
	case map[string]any, []any:
		return "", false
	default:
		s := strings.TrimSpace(fmt.Sprint(x))
		return s, s != ""
	}
}

func isCandidate(section types.Section, field string) bool {
	for _, c := range keyCandidates[section] {
		if c == field {
			return true
		}
	}
	return false
}
