package reconcile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archrecon/internal/architecture/normalize"
	"archrecon/internal/types"
)

func TestBuildDocument(t *testing.T) {
	payload := map[string]any{
		"project_name": "Shop",
		"scale":        "small",
		"tech_stack":   map[string]any{"frontend": []any{"React"}},
		"modules": []any{
			map[string]any{"name": "Auth", "path": "server/auth", "description": "Login"},
			map[string]any{"description": "nameless"},
		},
		"directory_structure": map[string]any{"frontend": map[string]any{"pages": "Pages"}},
		"roadmap":             []any{"MVP"},
	}

	b, err := BuildDocument("p1", "alice", payload)

	require.NoError(t, err)
	doc := b.Document
	assert.Equal(t, "p1", doc.ProjectRef)
	assert.Equal(t, "Shop", doc.Name)
	assert.Equal(t, "alice", doc.CreatedBy)
	assert.Equal(t, types.StatusDraft, doc.Status)
	assert.Equal(t, "React", doc.TechStack.Frontend["framework"])

	require.Len(t, doc.Modules, 1)
	assert.Equal(t, "Auth", doc.Modules[0]["name"])
	assert.Equal(t, "planned", doc.Modules[0]["status"])
	assert.Equal(t, 1, b.Dropped[normalize.FieldModules])

	assert.Equal(t, map[string]any{
		"frontend": map[string]any{"pages": "Pages"},
		"backend":  map[string]any{"server": map[string]any{"auth": "Login"}},
		"shared":   map[string]any{},
	}, doc.DirectoryStructure)

	require.Len(t, doc.TechnicalRoadmap, 1)
	assert.Equal(t, 1, doc.TechnicalRoadmap[0]["order"])

	assert.True(t, b.Has(normalize.FieldModules))
	assert.True(t, b.Has(normalize.FieldTechnicalRoadmap))
	assert.False(t, b.Has(normalize.FieldAPIEndpoints))
	assert.Nil(t, doc.APIEndpoints)
	assert.Equal(t, Score(doc), doc.CompletenessScore)
}

func TestBuildDocumentValidation(t *testing.T) {
	_, err := BuildDocument("p1", "", map[string]any{
		"modules": []any{map[string]any{"description": "no name"}},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, normalize.FieldModules, verr.Field)
	assert.Equal(t, StageNormalized, verr.Stage)

	_, err = BuildDocument("p1", "", map[string]any{"unrelated": true})
	require.True(t, errors.As(err, &verr))

	_, err = BuildDocument("p1", "", []any{})
	var malformed *MalformedPayloadError
	require.True(t, errors.As(err, &malformed))
}

func TestBuildDocumentEmptyRequiredListIsValid(t *testing.T) {
	b, err := BuildDocument("p1", "", `{"name":"X","apiEndpoints":[]}`)

	require.NoError(t, err)
	assert.Equal(t, []types.Item{}, b.Document.APIEndpoints)
	assert.True(t, b.Has(normalize.FieldAPIEndpoints))
}

func TestBuildDocumentStatus(t *testing.T) {
	b, err := BuildDocument("p1", "", map[string]any{"name": "X", "status": "active"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, b.Document.Status)

	b, err = BuildDocument("p1", "", map[string]any{"name": "X", "status": "shipping"})
	require.NoError(t, err)
	assert.Equal(t, types.StatusDraft, b.Document.Status)
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0, Score(nil))
	assert.Equal(t, 0, Score(&types.Document{}))

	full := &types.Document{
		Name:                  "a",
		ProjectType:           "web",
		Scale:                 "small",
		TechStack:             types.TechStack{Backend: types.Fields{"framework": "gin"}},
		Modules:               []types.Item{{"name": "a"}},
		APIEndpoints:          []types.Item{{"path": "/"}},
		DirectoryStructure:    map[string]any{"backend": map[string]any{"x": ""}},
		Integrations:          []types.Item{{"name": "stripe"}},
		ArchitectureDecisions: []types.Item{{"title": "t"}},
		TechnicalRoadmap:      []types.Item{{"phase": "p"}},
	}
	assert.Equal(t, 100, Score(full))

	partial := &types.Document{Name: "a", Modules: []types.Item{{"name": "a"}}}
	assert.Equal(t, 25, Score(partial))
}
