package dirtree

import (
	"sort"
	"strings"
)

// InsertPath places path under its root branch and attaches description to the
// terminal segment. The first segment is consumed when it names the branch
// itself ("frontend/x"), otherwise it becomes a child ("src/x" lands in
// frontend/src/x).
//
// Intermediate segments are created as containers. A leaf standing where a
// container is needed is replaced by an empty container and its description is
// lost. The terminal value is only written when nothing (or an empty
// description) is there yet, so curated descriptions survive later passes.
//
// The input tree is not modified; the returned tree shares untouched subtrees
// with it.
func InsertPath(tree Tree, path, description string) Tree {
	segs := Segments(path)
	if len(segs) == 0 {
		return tree
	}
	branch := Classify(segs[0])
	if strings.EqualFold(segs[0], branch) {
		segs = segs[1:]
	}

	out := copyNode(tree)
	cur := container(out, branch)
	for i, seg := range segs {
		if i == len(segs)-1 {
			if prev, exists := cur[seg]; !exists || prev == "" {
				cur[seg] = description
			}
			break
		}
		cur = container(cur, seg)
	}
	return out
}

// container replaces parent[key] with a writable copy of the container stored
// there, creating an empty one when the slot is missing or holds a leaf.
func container(parent Tree, key string) Tree {
	next := copyNode(asTree(parent[key]))
	parent[key] = next
	return next
}

func asTree(v any) Tree {
	if t, ok := v.(map[string]any); ok {
		return t
	}
	return nil
}

func copyNode(t Tree) Tree {
	out := make(Tree, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Ensure returns a tree with all three root branches present as containers.
func Ensure(tree Tree) Tree {
	out := copyNode(tree)
	for _, b := range Branches {
		if _, ok := out[b].(map[string]any); !ok {
			out[b] = Tree{}
		}
	}
	return out
}

// Entry is one path/description pair, as produced by flattening a tree.
type Entry struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Flatten lists every leaf of tree with its slash-joined path, sorted by path.
func Flatten(tree Tree) []Entry {
	var out []Entry
	var walk func(prefix string, node Tree)
	walk = func(prefix string, node Tree) {
		for k, v := range node {
			p := k
			if prefix != "" {
				p = prefix + Separator + k
			}
			if child, ok := v.(map[string]any); ok {
				walk(p, child)
				continue
			}
			desc, _ := v.(string)
			out = append(out, Entry{Path: p, Description: desc})
		}
	}
	walk("", tree)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// CountLeaves returns the number of leaf descriptions in tree.
func CountLeaves(tree Tree) int {
	n := 0
	for _, v := range tree {
		if child, ok := v.(map[string]any); ok {
			n += CountLeaves(child)
			continue
		}
		n++
	}
	return n
}
