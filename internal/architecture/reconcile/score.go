package reconcile

import (
	"strings"

	"archrecon/internal/architecture/dirtree"
	"archrecon/internal/types"
)

// Score weights sum to 100.
const (
	weightHeader       = 15
	weightTechStack    = 15
	weightModules      = 20
	weightEndpoints    = 15
	weightDirectory    = 10
	weightIntegrations = 5
	weightDecisions    = 10
	weightRoadmap      = 10
)

// Score derives the completeness of doc in the range 0..100. Each section
// contributes its full weight once it carries content; the header (name,
// project type, scale) contributes a third of its weight per field.
func Score(doc *types.Document) int {
	if doc == nil {
		return 0
	}
	score := 0
	for _, s := range []string{doc.Name, doc.ProjectType, doc.Scale} {
		if strings.TrimSpace(s) != "" {
			score += weightHeader / 3
		}
	}
	if !doc.TechStack.IsEmpty() {
		score += weightTechStack
	}
	if len(doc.Modules) > 0 {
		score += weightModules
	}
	if len(doc.APIEndpoints) > 0 {
		score += weightEndpoints
	}
	if dirtree.CountLeaves(doc.DirectoryStructure) > 0 {
		score += weightDirectory
	}
	if len(doc.Integrations) > 0 {
		score += weightIntegrations
	}
	if len(doc.ArchitectureDecisions) > 0 {
		score += weightDecisions
	}
	if len(doc.TechnicalRoadmap) > 0 {
		score += weightRoadmap
	}
	if score > 100 {
		score = 100
	}
	return score
}
