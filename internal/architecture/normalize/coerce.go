package normalize

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// coerce converts v to the field's declared shape. ok is false when the value
// cannot be represented; the caller then treats the field as absent.
func coerce(f field, v any, mode Mode) (any, bool) {
	switch f.Kind {
	case vString:
		s, ok := toString(v)
		if !ok || s == "" {
			return nil, false
		}
		if f.Upper {
			s = strings.ToUpper(s)
		}
		if len(f.Enum) > 0 {
			return enumValue(f, s)
		}
		return s, true
	case vBool:
		return toBool(v)
	case vInt:
		return toInt(v)
	case vStrings:
		l := toStrings(v)
		if len(l) == 0 {
			return nil, false
		}
		return l, true
	case vList:
		l := toList(f, v, mode)
		if len(l) == 0 {
			return nil, false
		}
		return l, true
	case vObject:
		if f.Nested == nil {
			m, ok := v.(map[string]any)
			return m, ok
		}
		it, ok := normalizeItem(f.Nested, v, mode)
		if !ok {
			return nil, false
		}
		return map[string]any(it), true
	default:
		return v, v != nil
	}
}

func enumValue(f field, s string) (any, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	for _, e := range f.Enum {
		if strings.EqualFold(e, key) {
			return e, true
		}
	}
	if mapped, ok := f.Synonyms[key]; ok {
		return mapped, true
	}
	return nil, false
}

func toString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case []any:
		parts := toStrings(x)
		if len(parts) == 0 {
			return "", false
		}
		ss := make([]string, len(parts))
		for i, p := range parts {
			ss[i] = p.(string)
		}
		return strings.Join(ss, ", "), true
	}
	return "", false
}

func toBool(v any) (any, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case float64:
		return x != 0, true
	case int:
		return x != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "1", "required", "on":
			return true, true
		case "false", "no", "n", "0", "optional", "off":
			return false, true
		}
	}
	return nil, false
}

func toInt(v any) (any, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), true
	case json.Number:
		n, err := x.Int64()
		return int(n), err == nil
	case string:
		s := strings.TrimSpace(x)
		end := 0
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		if end == 0 {
			return nil, false
		}
		n, err := strconv.Atoi(s[:end])
		return n, err == nil
	}
	return nil, false
}

// toStrings flattens v into a list of non-blank strings. Comma separated
// strings are split; objects contribute their most name-like field.
func toStrings(v any) []any {
	var out []any
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch x := v.(type) {
	case string:
		for _, p := range strings.Split(x, ",") {
			add(p)
		}
	case []string:
		for _, s := range x {
			add(s)
		}
	case []any:
		for _, e := range x {
			switch el := e.(type) {
			case map[string]any:
				add(labelOf(el))
			default:
				if s, ok := toString(el); ok {
					add(s)
				}
			}
		}
	default:
		if s, ok := toString(x); ok {
			add(s)
		}
	}
	return out
}

func labelOf(m map[string]any) string {
	for _, k := range []string{"name", "title", "value", "option", "description"} {
		if s, ok := toString(m[k]); ok && s != "" {
			return s
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

func toList(f field, v any, mode Mode) []any {
	var elems []any
	switch x := v.(type) {
	case []any:
		elems = x
	case map[string]any:
		if f.KeyedBy != "" && !looksLikeItem(f.Nested, x) {
			elems = keyedElements(f, x)
		} else {
			elems = []any{x}
		}
	case nil:
		return nil
	default:
		elems = []any{x}
	}
	out := make([]any, 0, len(elems))
	for _, e := range elems {
		if it, ok := normalizeItem(f.Nested, e, mode); ok {
			out = append(out, map[string]any(it))
		}
	}
	return out
}

// keyedElements expands {"200": "OK", "404": {...}} into list elements.
func keyedElements(f field, m map[string]any) []any {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(m))
	for _, k := range keys {
		el := map[string]any{}
		if obj, ok := m[k].(map[string]any); ok {
			for kk, vv := range obj {
				el[kk] = vv
			}
		} else if f.KeyedValue != "" {
			el[f.KeyedValue] = m[k]
		}
		el[f.KeyedBy] = k
		out = append(out, el)
	}
	return out
}

func looksLikeItem(s *schema, m map[string]any) bool {
	if s == nil {
		return true
	}
	known := map[string]bool{}
	for _, f := range s.Fields {
		known[foldKey(f.Name)] = true
		for _, a := range f.Aliases {
			known[foldKey(a)] = true
		}
	}
	for k := range m {
		if known[foldKey(k)] {
			return true
		}
	}
	return false
}
