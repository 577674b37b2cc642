package normalize

import (
	"strings"

	"archrecon/internal/types"
)

// Canonical top-level document fields.
const (
	FieldName                  = types.FieldName
	FieldProjectType           = types.FieldProjectType
	FieldScale                 = types.FieldScale
	FieldTechStack             = types.FieldTechStack
	FieldModules               = types.FieldModules
	FieldAPIEndpoints          = types.FieldAPIEndpoints
	FieldDirectoryStructure    = types.FieldDirectoryStructure
	FieldIntegrations          = types.FieldIntegrations
	FieldArchitectureDecisions = types.FieldArchitectureDecisions
	FieldTechnicalRoadmap      = types.FieldTechnicalRoadmap
	FieldStatus                = types.FieldStatus
)

var documentAliases = map[string][]string{
	FieldName:                  {"project_name", "projectName", "title"},
	FieldProjectType:           {"project_type", "type", "category"},
	FieldScale:                 {"size", "project_scale"},
	FieldTechStack:             {"tech_stack", "technologies", "stack", "technology_stack"},
	FieldModules:               {"components", "services"},
	FieldAPIEndpoints:          {"api_endpoints", "endpoints", "api", "routes"},
	FieldDirectoryStructure:    {"directory_structure", "structure", "directories", "folder_structure", "file_structure"},
	FieldIntegrations:          {"external_integrations", "third_party", "third_party_services"},
	FieldArchitectureDecisions: {"architecture_decisions", "decisions", "adrs"},
	FieldTechnicalRoadmap:      {"technical_roadmap", "roadmap", "phases", "implementation_phases"},
	FieldStatus:                {"state"},
}

// DocumentFields is the canonical top-level field order.
var DocumentFields = []string{
	FieldName, FieldProjectType, FieldScale, FieldTechStack, FieldModules, FieldAPIEndpoints,
	FieldDirectoryStructure, FieldIntegrations, FieldArchitectureDecisions, FieldTechnicalRoadmap,
	FieldStatus,
}

var documentWrappers = []string{"architecture", "document", "project_architecture", "projectArchitecture"}

// TopLevel resolves aliases of a whole-document payload. The result maps
// canonical field names to the raw values that were present; absent or null
// fields are left out. Wrappers such as {"architecture": {...}} are unwrapped.
func TopLevel(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	for _, w := range documentWrappers {
		if inner, ok := m[w].(map[string]any); ok && len(m) == 1 {
			m = inner
			break
		}
	}
	out := make(map[string]any, len(DocumentFields))
	for _, name := range DocumentFields {
		for _, k := range append([]string{name}, documentAliases[name]...) {
			if v, ok := m[k]; ok && v != nil {
				out[name] = v
				break
			}
		}
	}
	return out, true
}

// Scalar coerces a header value to a trimmed string.
func Scalar(v any) string {
	s, _ := toString(v)
	return strings.TrimSpace(s)
}
