package normalize

import (
	"sort"
	"strings"

	"archrecon/internal/types"
)

// Category is one tech stack group.
type Category string

const (
	CategoryFrontend       Category = "frontend"
	CategoryBackend        Category = "backend"
	CategoryDatabase       Category = "database"
	CategoryInfrastructure Category = "infrastructure"
)

// Categories lists the tech stack groups in document order.
var Categories = []Category{CategoryFrontend, CategoryBackend, CategoryDatabase, CategoryInfrastructure}

// ExtraField receives list elements beyond a category's positional fields.
const ExtraField = "additional"

var categoryFields = map[Category][]string{
	CategoryFrontend:       {"framework", "language", "ui_library", "state_management", "routing", "build_tool", "testing"},
	CategoryBackend:        {"framework", "language", "runtime", "api_style", "orm", "authentication", "testing"},
	CategoryDatabase:       {"primary", "cache", "search", "orm", "migrations"},
	CategoryInfrastructure: {"hosting", "ci_cd", "containerization", "monitoring", "cdn", "storage"},
}

var categoryAliases = map[string]Category{
	"frontend": CategoryFrontend, "front_end": CategoryFrontend, "client": CategoryFrontend, "ui": CategoryFrontend, "web": CategoryFrontend,
	"backend": CategoryBackend, "back_end": CategoryBackend, "server": CategoryBackend, "api": CategoryBackend,
	"database": CategoryDatabase, "databases": CategoryDatabase, "db": CategoryDatabase, "data": CategoryDatabase, "persistence": CategoryDatabase,
	"infrastructure": CategoryInfrastructure, "infra": CategoryInfrastructure, "devops": CategoryInfrastructure, "deployment": CategoryInfrastructure, "ops": CategoryInfrastructure,
}

// CategoryFields returns the positional field list of c.
func CategoryFields(c Category) []string {
	f := categoryFields[c]
	out := make([]string, len(f))
	copy(out, f)
	return out
}

// TechStack normalizes a raw tech stack object. Each category may arrive as a
// list of strings (mapped positionally onto CategoryFields), a list mixing
// strings and objects (objects merge their keys directly), a comma separated
// string, or an object that passes through. Declared fields that end up
// missing default to "". ok is false when raw is not an object.
func TechStack(raw any) (types.TechStack, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return types.TechStack{}, false
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out types.TechStack
	for _, k := range keys {
		c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(k))]
		if !ok {
			continue
		}
		fields := mergeFields(categoryOf(out, c), category(c, m[k]))
		setCategory(&out, c, fields)
	}
	for _, c := range Categories {
		fields := categoryOf(out, c)
		if fields == nil {
			fields = types.Fields{}
		}
		for _, name := range categoryFields[c] {
			if _, ok := fields[name]; !ok {
				fields[name] = ""
			}
		}
		setCategory(&out, c, fields)
	}
	return out, true
}

func category(c Category, v any) types.Fields {
	names := categoryFields[c]
	out := types.Fields{}
	var extra []any
	pos := 0
	place := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if pos < len(names) {
			out[names[pos]] = s
			pos++
			return
		}
		extra = append(extra, s)
	}

	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			out[k] = val
		}
	case string:
		for _, p := range strings.Split(x, ",") {
			place(p)
		}
	case []any:
		for _, e := range x {
			switch el := e.(type) {
			case map[string]any:
				for k, val := range el {
					out[k] = val
				}
			default:
				if s, ok := toString(el); ok {
					place(s)
				}
			}
		}
	}
	if len(extra) > 0 {
		out[ExtraField] = extra
	}
	return out
}

func mergeFields(a, b types.Fields) types.Fields {
	if a == nil {
		return b
	}
	out := make(types.Fields, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func categoryOf(t types.TechStack, c Category) types.Fields {
	switch c {
	case CategoryFrontend:
		return t.Frontend
	case CategoryBackend:
		return t.Backend
	case CategoryDatabase:
		return t.Database
	case CategoryInfrastructure:
		return t.Infrastructure
	}
	return nil
}

func setCategory(t *types.TechStack, c Category, f types.Fields) {
	switch c {
	case CategoryFrontend:
		t.Frontend = f
	case CategoryBackend:
		t.Backend = f
	case CategoryDatabase:
		t.Database = f
	case CategoryInfrastructure:
		t.Infrastructure = f
	}
}
