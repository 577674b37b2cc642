package dirtree

import "strings"

// Tree is a directory tree node map. Every value is either a leaf description
// (string) or another Tree.
type Tree = map[string]any

// Root branch names.
const (
	BranchFrontend = "frontend"
	BranchBackend  = "backend"
	BranchShared   = "shared"
)

// Branches lists the root branches in display order.
var Branches = []string{BranchFrontend, BranchBackend, BranchShared}

// Separator splits path strings into segments.
const Separator = "/"

// branchKeywords maps a first path segment to its root branch. Segments that
// match nothing fall back to DefaultBranch.
var branchKeywords = map[string]string{
	"frontend": BranchFrontend,
	"src":      BranchFrontend,
	"client":   BranchFrontend,
	"backend":  BranchBackend,
	"server":   BranchBackend,
	"api":      BranchBackend,
	"shared":   BranchShared,
	"common":   BranchShared,
	"lib":      BranchShared,
}

// DefaultBranch receives paths whose first segment is not a known keyword.
const DefaultBranch = BranchBackend

// BranchKeywords returns a copy of the classification table.
func BranchKeywords() map[string]string {
	out := make(map[string]string, len(branchKeywords))
	for k, v := range branchKeywords {
		out[k] = v
	}
	return out
}

// Classify returns the root branch a first path segment belongs to.
func Classify(segment string) string {
	if b, ok := branchKeywords[strings.ToLower(strings.TrimSpace(segment))]; ok {
		return b
	}
	return DefaultBranch
}

// Segments trims separators and splits path into non-empty segments.
// Backslashes are read as separators.
func Segments(path string) []string {
	path = strings.ReplaceAll(path, `\`, Separator)
	path = strings.Trim(strings.TrimSpace(path), Separator)
	if path == "" {
		return nil
	}
	parts := strings.Split(path, Separator)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == "." {
			continue
		}
		out = append(out, p)
	}
	return out
}
