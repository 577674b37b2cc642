package normalize

import (
	"strings"

	"archrecon/internal/architecture/dirtree"
)

// Structure is a normalized directory payload. A payload arrives either as a
// nested object (Tree) or as a list of path entries (Entries), never both.
type Structure struct {
	Tree    dirtree.Tree
	Entries []dirtree.Entry
}

// IsEmpty reports whether the payload carried nothing to merge.
func (s Structure) IsEmpty() bool { return len(s.Tree) == 0 && len(s.Entries) == 0 }

var entryListKeys = []string{"paths", "entries", "directories", "items", "data"}

var treeWrapperKeys = []string{"directoryStructure", "directory_structure", "structure", "tree"}

// Tree normalizes a directory payload. Leaves are coerced to strings, lists of
// names become containers of empty leaves, and {"path": ...} lists become
// Entries for the path injector. ok is false when raw has neither shape.
func Tree(raw any) (Structure, bool) {
	switch x := raw.(type) {
	case []any:
		e := entries(x)
		return Structure{Entries: e}, len(e) > 0 || len(x) == 0
	case map[string]any:
		for _, k := range treeWrapperKeys {
			if inner, ok := x[k]; ok && len(x) == 1 {
				return Tree(inner)
			}
		}
		for _, k := range entryListKeys {
			if l, ok := x[k].([]any); ok && len(x) == 1 {
				return Structure{Entries: entries(l)}, true
			}
		}
		return Structure{Tree: cleanTree(x)}, true
	}
	return Structure{}, false
}

func entries(list []any) []dirtree.Entry {
	out := make([]dirtree.Entry, 0, len(list))
	for _, el := range list {
		switch x := el.(type) {
		case string:
			if p := strings.TrimSpace(x); p != "" {
				out = append(out, dirtree.Entry{Path: p})
			}
		case map[string]any:
			path := firstString(x, "path", "dir", "directory", "folder", "name")
			if path == "" {
				continue
			}
			out = append(out, dirtree.Entry{
				Path:        path,
				Description: firstString(x, "description", "desc", "purpose"),
			})
		}
	}
	return out
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := toString(m[k]); ok && s != "" {
			return s
		}
	}
	return ""
}

func cleanTree(m map[string]any) dirtree.Tree {
	out := make(dirtree.Tree, len(m))
	for k, v := range m {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		out[k] = cleanNode(v)
	}
	return out
}

func cleanNode(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cleanTree(x)
	case []any:
		node := dirtree.Tree{}
		for _, el := range x {
			switch e := el.(type) {
			case map[string]any:
				name := firstString(e, "name", "path", "dir")
				if name == "" {
					continue
				}
				if children, ok := e["children"].(map[string]any); ok {
					node[name] = cleanTree(children)
					continue
				}
				node[name] = firstString(e, "description", "desc", "purpose")
			default:
				if s, ok := toString(e); ok && s != "" {
					node[s] = ""
				}
			}
		}
		return node
	case nil:
		return ""
	default:
		s, _ := toString(x)
		return s
	}
}
