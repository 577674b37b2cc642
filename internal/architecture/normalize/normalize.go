// Package normalize turns loosely shaped model output into canonical
// architecture fragments. Every function here is pure.
package normalize

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"archrecon/internal/types"
)

// Mode selects how much the normalizer fills in.
type Mode int

const (
	// ModePatch resolves aliases and coerces the fields that are present.
	// Missing fields stay missing so a merge never overwrites stored values
	// with defaults.
	ModePatch Mode = iota
	// ModeCreate additionally fills every declared default.
	ModeCreate
)

func (m Mode) String() string {
	if m == ModeCreate {
		return "create"
	}
	return "patch"
}

// Fragment normalizes a raw list of kind items. A single object is treated as a
// one-element list, and a single-key wrapper such as {"modules": [...]} is
// unwrapped. Elements that carry nothing usable are skipped. A nil raw value
// yields nil so callers can tell "absent" from "empty".
func Fragment(kind Kind, raw any, mode Mode) []types.Item {
	s, ok := schemas[kind]
	if !ok || raw == nil {
		return nil
	}
	elems := listElements(raw)
	out := make([]types.Item, 0, len(elems))
	for _, e := range elems {
		it, ok := normalizeItem(s, e, mode)
		if !ok {
			continue
		}
		out = append(out, it)
	}
	finishList(kind, out, mode)
	return out
}

// Item normalizes a single raw element.
func Item(kind Kind, raw any, mode Mode) (types.Item, bool) {
	s, ok := schemas[kind]
	if !ok {
		return nil, false
	}
	it, ok := normalizeItem(s, raw, mode)
	if ok {
		finishList(kind, []types.Item{it}, mode)
	}
	return it, ok
}

// HasIdentity reports whether item carries a non-blank identity field.
func HasIdentity(kind Kind, item types.Item) bool {
	s, ok := schemas[kind]
	if !ok {
		return false
	}
	for _, f := range s.Identity {
		if v, ok := toString(item[f]); ok && v != "" {
			return true
		}
	}
	return false
}

func listElements(raw any) []any {
	switch x := raw.(type) {
	case []any:
		return x
	case []types.Item:
		out := make([]any, len(x))
		for i, it := range x {
			out[i] = it
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case map[string]any:
		if inner, ok := unwrapList(x); ok {
			return inner
		}
		return []any{x}
	default:
		return []any{x}
	}
}

// unwrapList detects {"items": [...]}-style envelopes, with or without a
// sibling "section" key.
func unwrapList(m map[string]any) ([]any, bool) {
	for _, k := range []string{"items", "data", "payload"} {
		if l, ok := m[k].([]any); ok {
			return l, true
		}
	}
	if len(m) != 1 {
		return nil, false
	}
	for _, v := range m {
		if l, ok := v.([]any); ok {
			return l, true
		}
	}
	return nil, false
}

func normalizeItem(s *schema, raw any, mode Mode) (types.Item, bool) {
	var src map[string]any
	switch x := raw.(type) {
	case nil:
		return nil, false
	case map[string]any:
		src = x
	case string:
		x = strings.TrimSpace(x)
		if x == "" {
			return nil, false
		}
		if s.ParseScalar != nil {
			src = s.ParseScalar(x)
		} else {
			src = map[string]any{s.Scalar: x}
		}
	default:
		str, ok := toString(x)
		if !ok {
			return nil, false
		}
		src = map[string]any{s.Scalar: str}
	}

	out := make(types.Item, len(src))
	consumed := make(map[string]bool, len(src))
	for _, f := range s.Fields {
		v, key, found := lookup(src, s, f)
		if found {
			if cv, ok := coerce(f, v, mode); ok {
				out[f.Name] = cv
				consumed[key] = true
				continue
			}
		}
		if mode == ModeCreate {
			if d, ok := defaultFor(f); ok {
				out[f.Name] = d
			}
		}
	}
	for k, v := range src {
		if consumed[k] || s.canonical(k) {
			continue
		}
		if _, taken := out[k]; taken {
			continue
		}
		out[k] = v
	}
	return out, true
}

// lookup finds the first non-blank value for f, trying the canonical name and
// aliases exactly, then ignoring case, underscores and dashes.
func lookup(src map[string]any, s *schema, f field) (any, string, bool) {
	names := append([]string{f.Name}, f.Aliases...)
	for _, n := range names {
		if v, ok := src[n]; ok && !blank(v) {
			return v, n, true
		}
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[foldKey(n)] = true
	}
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s.canonical(k) && k != f.Name {
			continue
		}
		if want[foldKey(k)] && !blank(src[k]) {
			return src[k], k, true
		}
	}
	return nil, "", false
}

func foldKey(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, "_", "")
	return strings.ReplaceAll(k, "-", "")
}

func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func defaultFor(f field) (any, bool) {
	if f.Default != nil {
		return f.Default, true
	}
	switch f.Kind {
	case vString:
		return "", true
	case vBool:
		return false, true
	case vInt:
		return 0, true
	case vStrings, vList:
		return []any{}, true
	}
	return nil, false
}

// finishList applies per-kind rules that need list context.
func finishList(kind Kind, items []types.Item, mode Mode) {
	if mode != ModeCreate {
		return
	}
	switch kind {
	case KindModule:
		for _, it := range items {
			if id, _ := it["id"].(string); id == "" {
				it["id"] = uuid.NewString()
			}
		}
	case KindPhase:
		for i, it := range items {
			if n, _ := it["order"].(int); n == 0 {
				it["order"] = i + 1
			}
		}
	}
}

func parseEndpointScalar(s string) types.Item {
	parts := strings.Fields(s)
	if len(parts) >= 2 {
		m := strings.ToUpper(parts[0])
		for _, known := range types.HTTPMethods {
			if m == known {
				return types.Item{"method": m, "path": strings.Join(parts[1:], " ")}
			}
		}
	}
	return types.Item{"path": s}
}
