package types

import (
	"strings"
	"time"
)

// Item is one list entry of an architecture section, keyed by canonical field name.
type Item = map[string]any

// Fields is a flat field map inside a tech stack category.
type Fields = map[string]any

// Document is the canonical architecture document. There is exactly one per project.
type Document struct {
	ProjectRef            string         `json:"projectRef"`
	Name                  string         `json:"name"`
	ProjectType           string         `json:"projectType"`
	Scale                 string         `json:"scale"`
	TechStack             TechStack      `json:"techStack"`
	Modules               []Item         `json:"modules"`
	APIEndpoints          []Item         `json:"apiEndpoints"`
	DirectoryStructure    map[string]any `json:"directoryStructure"`
	Integrations          []Item         `json:"integrations"`
	ArchitectureDecisions []Item         `json:"architectureDecisions"`
	TechnicalRoadmap      []Item         `json:"technicalRoadmap"`
	CompletenessScore     int            `json:"completenessScore"`
	Status                string         `json:"status"`
	CreatedBy             string         `json:"createdBy,omitempty"`
	UpdatedBy             string         `json:"updatedBy,omitempty"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
	Version               int64          `json:"version"`
}

// Clone returns a copy whose top-level slices and maps can be replaced without
// touching the receiver. Items themselves are shared.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.TechStack = d.TechStack.Clone()
	out.Modules = cloneItems(d.Modules)
	out.APIEndpoints = cloneItems(d.APIEndpoints)
	out.Integrations = cloneItems(d.Integrations)
	out.ArchitectureDecisions = cloneItems(d.ArchitectureDecisions)
	out.TechnicalRoadmap = cloneItems(d.TechnicalRoadmap)
	if d.DirectoryStructure != nil {
		out.DirectoryStructure = make(map[string]any, len(d.DirectoryStructure))
		for k, v := range d.DirectoryStructure {
			out.DirectoryStructure[k] = v
		}
	}
	return &out
}

func cloneItems(in []Item) []Item {
	if in == nil {
		return nil
	}
	out := make([]Item, len(in))
	copy(out, in)
	return out
}

// TechStack groups technology choices by category.
type TechStack struct {
	Frontend       Fields `json:"frontend"`
	Backend        Fields `json:"backend"`
	Database       Fields `json:"database"`
	Infrastructure Fields `json:"infrastructure"`
}

// Clone copies each category map.
func (t TechStack) Clone() TechStack {
	return TechStack{
		Frontend:       cloneFields(t.Frontend),
		Backend:        cloneFields(t.Backend),
		Database:       cloneFields(t.Database),
		Infrastructure: cloneFields(t.Infrastructure),
	}
}

// IsEmpty reports whether no category carries a non-empty value.
func (t TechStack) IsEmpty() bool {
	for _, f := range []Fields{t.Frontend, t.Backend, t.Database, t.Infrastructure} {
		for _, v := range f {
			if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
				continue
			}
			if v != nil {
				return false
			}
		}
	}
	return true
}

func cloneFields(in Fields) Fields {
	if in == nil {
		return nil
	}
	out := make(Fields, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Section is one independently updatable slice of a document.
type Section string

const (
	SectionStructure Section = "structure"
	SectionDatabase  Section = "database"
	SectionEndpoints Section = "endpoints"
	SectionModules   Section = "modules"
)

// Sections lists every merge section in a stable order.
var Sections = []Section{SectionStructure, SectionDatabase, SectionEndpoints, SectionModules}

// ParseSection maps a caller supplied token to a Section.
func ParseSection(raw string) (Section, bool) {
	s := Section(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case SectionStructure, SectionDatabase, SectionEndpoints, SectionModules:
		return s, true
	}
	return "", false
}

// Field is the document field the section's fragment is persisted into.
// The database section has no field here; schema entities live elsewhere.
func (s Section) Field() string {
	switch s {
	case SectionStructure:
		return "directoryStructure"
	case SectionEndpoints:
		return "apiEndpoints"
	case SectionModules:
		return "modules"
	}
	return ""
}

// IsTree reports whether the section merges with the tree strategy.
func (s Section) IsTree() bool { return s == SectionStructure }

func (s Section) String() string { return string(s) }

// Document status values.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Top-level document fields that a create payload can replace.
const (
	FieldName                  = "name"
	FieldProjectType           = "projectType"
	FieldScale                 = "scale"
	FieldTechStack             = "techStack"
	FieldModules               = "modules"
	FieldAPIEndpoints          = "apiEndpoints"
	FieldDirectoryStructure    = "directoryStructure"
	FieldIntegrations          = "integrations"
	FieldArchitectureDecisions = "architectureDecisions"
	FieldTechnicalRoadmap      = "technicalRoadmap"
	FieldStatus                = "status"
)

// CopyFields replaces the listed top-level fields of d with those of src.
// Unknown names are ignored.
func (d *Document) CopyFields(src *Document, fields []string) {
	for _, f := range fields {
		switch f {
		case FieldName:
			d.Name = src.Name
		case FieldProjectType:
			d.ProjectType = src.ProjectType
		case FieldScale:
			d.Scale = src.Scale
		case FieldTechStack:
			d.TechStack = src.TechStack.Clone()
		case FieldModules:
			d.Modules = cloneItems(src.Modules)
		case FieldAPIEndpoints:
			d.APIEndpoints = cloneItems(src.APIEndpoints)
		case FieldDirectoryStructure:
			d.DirectoryStructure = src.DirectoryStructure
		case FieldIntegrations:
			d.Integrations = cloneItems(src.Integrations)
		case FieldArchitectureDecisions:
			d.ArchitectureDecisions = cloneItems(src.ArchitectureDecisions)
		case FieldTechnicalRoadmap:
			d.TechnicalRoadmap = cloneItems(src.TechnicalRoadmap)
		case FieldStatus:
			d.Status = src.Status
		}
	}
}
