// Package reconcile dispatches normalized section payloads to the mergers and
// builds whole documents for the create path. It performs no I/O.
package reconcile

import (
	"encoding/json"
	"errors"

	"archrecon/internal/architecture/dirtree"
	"archrecon/internal/architecture/merge"
	"archrecon/internal/architecture/normalize"
	"archrecon/internal/types"
	"archrecon/internal/util/jsonutil"
)

// Result is the outcome of one partial update.
type Result struct {
	Section types.Section
	// Field is the document field Fragment must be persisted into.
	Field string
	// Fragment is []types.Item for list sections and dirtree.Tree for structure.
	Fragment  any
	ItemCount int
	Summary   merge.Stats
	// Directory is set when a modules merge injected module paths.
	Directory dirtree.Tree
}

// CountLabel names the unit of ItemCount.
func (r Result) CountLabel() string {
	if r.Section.IsTree() {
		return "object"
	}
	return "items"
}

// Items returns the merged list of a list section.
func (r Result) Items() []types.Item {
	items, _ := r.Fragment.([]types.Item)
	return items
}

// Tree returns the merged tree of the structure section.
func (r Result) Tree() dirtree.Tree {
	t, _ := r.Fragment.(dirtree.Tree)
	return t
}

// Apply returns a copy of doc with the merged fragment written into its field.
func (r Result) Apply(doc *types.Document) *types.Document {
	out := doc.Clone()
	if out == nil {
		out = &types.Document{}
	}
	switch r.Section {
	case types.SectionStructure:
		out.DirectoryStructure = r.Tree()
	case types.SectionModules:
		out.Modules = r.Items()
	case types.SectionEndpoints:
		out.APIEndpoints = r.Items()
	}
	if r.Directory != nil {
		out.DirectoryStructure = r.Directory
	}
	return out
}

// Reconcile merges payload into the stored fragment of section. doc is the
// stored document; nil means the project has none yet.
func Reconcile(section string, payload any, doc *types.Document) (Result, error) {
	sec, ok := types.ParseSection(section)
	if !ok {
		return Result{}, &UnsupportedSectionError{Section: section, Stage: StageReceived}
	}
	if sec == types.SectionDatabase {
		return Result{}, &UnsupportedSectionError{Section: section, HandledElsewhere: true, Stage: StageReceived}
	}
	if doc == nil {
		return Result{}, &DocumentNotFoundError{Stage: StageReceived}
	}
	value, err := decodePayload(sec.String(), payload)
	if err != nil {
		return Result{}, err
	}
	if sec.IsTree() {
		return reconcileStructure(value, doc)
	}
	return reconcileList(sec, value, doc), nil
}

// MergeEntities merges schema entities for callers that persist the database
// section themselves.
func MergeEntities(payload any, existing []types.Item) (Result, error) {
	value, err := decodePayload(types.SectionDatabase.String(), payload)
	if err != nil {
		return Result{}, err
	}
	items := normalize.Fragment(normalize.KindEntity, value, normalize.ModePatch)
	merged, stats := merge.Lister{}.Merge(existing, items, types.SectionDatabase)
	return Result{
		Section:   types.SectionDatabase,
		Fragment:  merged,
		ItemCount: len(merged),
		Summary:   stats,
	}, nil
}

func reconcileList(sec types.Section, value any, doc *types.Document) Result {
	kind, _ := normalize.KindFor(sec)
	items := normalize.Fragment(kind, value, normalize.ModePatch)

	var existing []types.Item
	switch sec {
	case types.SectionModules:
		existing = doc.Modules
	case types.SectionEndpoints:
		existing = doc.APIEndpoints
	}
	merged, stats := merge.Lister{}.Merge(existing, items, sec)
	res := Result{
		Section:   sec,
		Field:     sec.Field(),
		Fragment:  merged,
		ItemCount: len(merged),
		Summary:   stats,
	}
	if sec == types.SectionModules {
		res.Directory = injectModulePaths(doc.DirectoryStructure, items)
	}
	return res
}

// injectModulePaths returns nil when no incoming module names a path.
func injectModulePaths(tree dirtree.Tree, modules []types.Item) dirtree.Tree {
	var out dirtree.Tree
	for _, m := range modules {
		path, _ := m["path"].(string)
		if path == "" {
			continue
		}
		if out == nil {
			out = tree
		}
		desc, _ := m["description"].(string)
		if desc == "" {
			desc, _ = m["name"].(string)
		}
		out = dirtree.InsertPath(out, path, desc)
	}
	return out
}

func reconcileStructure(value any, doc *types.Document) (Result, error) {
	s, ok := normalize.Tree(value)
	if !ok {
		return Result{}, &MalformedPayloadError{
			Section: types.SectionStructure.String(),
			Reason:  "expected a directory object or a list of path entries",
			Stage:   StageReceived,
		}
	}
	before := dirtree.CountLeaves(doc.DirectoryStructure)
	var merged dirtree.Tree
	if s.Tree != nil {
		merged = merge.MergeTree(doc.DirectoryStructure, withoutPlaceholders(doc.DirectoryStructure, s.Tree))
	} else {
		merged = doc.DirectoryStructure
		for _, e := range s.Entries {
			merged = dirtree.InsertPath(merged, e.Path, e.Description)
		}
	}
	if merged == nil {
		merged = dirtree.Tree{}
	}
	var stats merge.Stats
	if added := dirtree.CountLeaves(merged) - before; added > 0 {
		stats.Added = added
	}
	return Result{
		Section:   types.SectionStructure,
		Field:     types.SectionStructure.Field(),
		Fragment:  merged,
		ItemCount: len(merged),
		Summary:   stats,
	}, nil
}

// withoutPlaceholders drops blank leaves and empty objects from incoming where
// a stored value exists. A bare name list or a null only adds missing keys.
func withoutPlaceholders(existing, incoming dirtree.Tree) dirtree.Tree {
	out := make(dirtree.Tree, len(incoming))
	for k, in := range incoming {
		cur, found := existing[k]
		if !found {
			out[k] = in
			continue
		}
		if s, ok := in.(string); ok && s == "" {
			continue
		}
		inObj, inIsObj := in.(map[string]any)
		if inIsObj && len(inObj) == 0 {
			continue
		}
		curObj, curIsObj := cur.(map[string]any)
		if inIsObj && curIsObj {
			out[k] = withoutPlaceholders(curObj, inObj)
			continue
		}
		out[k] = in
	}
	return out
}

// decodePayload accepts decoded values as well as raw JSON text.
func decodePayload(section string, payload any) (any, error) {
	var (
		value any
		err   error
	)
	switch x := payload.(type) {
	case nil:
		return nil, &MalformedPayloadError{Section: section, Reason: "payload is empty", Stage: StageReceived}
	case map[string]any, []any:
		value = x
	case []byte:
		value, err = jsonutil.ParseValue(x)
	case json.RawMessage:
		value, err = jsonutil.ParseValue(x)
	case string:
		value, err = jsonutil.ParseValue([]byte(x))
	default:
		err = jsonutil.Decode(x, &value)
	}
	if err != nil {
		reason := "not valid JSON"
		if errors.Is(err, jsonutil.ErrEmptyPayload) {
			reason = "payload is empty"
		}
		return nil, &MalformedPayloadError{Section: section, Reason: reason, Stage: StageReceived, Err: err}
	}
	if inner, ok := unwrapEnvelope(value); ok {
		return decodePayload(section, inner)
	}
	switch value.(type) {
	case map[string]any, []any:
		return value, nil
	}
	return nil, &MalformedPayloadError{Section: section, Reason: "payload must be an object or an array", Stage: StageReceived}
}

var envelopeKeys = []string{"data", "payload", "items"}

// unwrapEnvelope strips a {section, data|payload|items} request envelope so
// every section merges the same inner value.
func unwrapEnvelope(value any) (any, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	if _, ok := m["section"]; !ok {
		return nil, false
	}
	for _, k := range envelopeKeys {
		if inner, ok := m[k]; ok && inner != nil {
			return inner, true
		}
	}
	return nil, false
}
