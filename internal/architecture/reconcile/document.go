package reconcile

import (
	"archrecon/internal/architecture/dirtree"
	"archrecon/internal/architecture/normalize"
	"archrecon/internal/types"
)

// Build is a whole document normalized for the create path.
type Build struct {
	Document *types.Document
	// Present lists the canonical top-level fields the payload carried. Only
	// these fields replace stored values.
	Present []string
	// Dropped counts items of required lists removed for lacking an identity.
	Dropped map[string]int
}

// Has reports whether field was present in the payload.
func (b Build) Has(field string) bool {
	for _, f := range b.Present {
		if f == field {
			return true
		}
	}
	return false
}

var requiredLists = map[string]normalize.Kind{
	normalize.FieldModules:      normalize.KindModule,
	normalize.FieldAPIEndpoints: normalize.KindEndpoint,
}

var optionalLists = map[string]normalize.Kind{
	normalize.FieldIntegrations:          normalize.KindIntegration,
	normalize.FieldArchitectureDecisions: normalize.KindDecision,
	normalize.FieldTechnicalRoadmap:      normalize.KindPhase,
}

// BuildDocument normalizes a whole architecture payload with create defaults.
// The result is whole-field replacement data; it never passes through the
// list or tree mergers.
func BuildDocument(projectRef, author string, payload any) (Build, error) {
	value, err := decodePayload("", payload)
	if err != nil {
		return Build{}, err
	}
	top, ok := normalize.TopLevel(value)
	if !ok {
		return Build{}, &MalformedPayloadError{Reason: "architecture must be an object", Stage: StageReceived}
	}

	doc := &types.Document{
		ProjectRef: projectRef,
		Status:     types.StatusDraft,
		CreatedBy:  author,
		UpdatedBy:  author,
	}
	b := Build{Document: doc, Dropped: map[string]int{}}

	for _, field := range normalize.DocumentFields {
		raw, ok := top[field]
		if !ok {
			continue
		}
		switch field {
		case normalize.FieldName:
			doc.Name = normalize.Scalar(raw)
		case normalize.FieldProjectType:
			doc.ProjectType = normalize.Scalar(raw)
		case normalize.FieldScale:
			doc.Scale = normalize.Scalar(raw)
		case normalize.FieldStatus:
			doc.Status = documentStatus(normalize.Scalar(raw))
		case normalize.FieldTechStack:
			ts, ok := normalize.TechStack(raw)
			if !ok {
				continue
			}
			doc.TechStack = ts
		case normalize.FieldDirectoryStructure:
			tree, ok := buildTree(raw)
			if !ok {
				continue
			}
			doc.DirectoryStructure = tree
		case normalize.FieldModules, normalize.FieldAPIEndpoints:
			items, dropped, err := requiredList(field, requiredLists[field], raw)
			if err != nil {
				return Build{}, err
			}
			if dropped > 0 {
				b.Dropped[field] = dropped
			}
			setList(doc, field, items)
		default:
			setList(doc, field, normalize.Fragment(optionalLists[field], raw, normalize.ModeCreate))
		}
		b.Present = append(b.Present, field)
	}
	if len(b.Present) == 0 {
		return Build{}, &ValidationError{Reason: "payload carries no architecture fields", Stage: StageNormalized}
	}
	if b.Has(normalize.FieldDirectoryStructure) {
		for _, m := range doc.Modules {
			if path, _ := m["path"].(string); path != "" {
				desc, _ := m["description"].(string)
				doc.DirectoryStructure = dirtree.InsertPath(doc.DirectoryStructure, path, desc)
			}
		}
	}
	doc.CompletenessScore = Score(doc)
	return b, nil
}

// requiredList keeps only identifiable items and rejects a non-empty list in
// which no item is identifiable.
func requiredList(field string, kind normalize.Kind, raw any) ([]types.Item, int, error) {
	items := normalize.Fragment(kind, raw, normalize.ModeCreate)
	kept := make([]types.Item, 0, len(items))
	for _, it := range items {
		if normalize.HasIdentity(kind, it) {
			kept = append(kept, it)
		}
	}
	if len(items) > 0 && len(kept) == 0 {
		return nil, 0, &ValidationError{
			Field:  field,
			Reason: "no item carries an identity field",
			Stage:  StageNormalized,
		}
	}
	return kept, len(items) - len(kept), nil
}

func buildTree(raw any) (dirtree.Tree, bool) {
	s, ok := normalize.Tree(raw)
	if !ok {
		return nil, false
	}
	tree := s.Tree
	if tree == nil {
		tree = dirtree.Tree{}
	}
	tree = dirtree.Ensure(tree)
	for _, e := range s.Entries {
		tree = dirtree.InsertPath(tree, e.Path, e.Description)
	}
	return tree, true
}

func setList(doc *types.Document, field string, items []types.Item) {
	if items == nil {
		items = []types.Item{}
	}
	switch field {
	case normalize.FieldModules:
		doc.Modules = items
	case normalize.FieldAPIEndpoints:
		doc.APIEndpoints = items
	case normalize.FieldIntegrations:
		doc.Integrations = items
	case normalize.FieldArchitectureDecisions:
		doc.ArchitectureDecisions = items
	case normalize.FieldTechnicalRoadmap:
		doc.TechnicalRoadmap = items
	}
}

func documentStatus(s string) string {
	switch s {
	case types.StatusDraft, types.StatusActive, types.StatusArchived:
		return s
	}
	return types.StatusDraft
}
