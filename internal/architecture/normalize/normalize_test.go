package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archrecon/internal/architecture/dirtree"
	"archrecon/internal/types"
)

func TestFragmentPatchResolvesAliasesOnly(t *testing.T) {
	raw := []any{map[string]any{"module_name": "Auth", "state": "done", "owner": "team-a"}}

	got := Fragment(KindModule, raw, ModePatch)

	assert.Equal(t, []types.Item{{"name": "Auth", "status": "completed", "owner": "team-a"}}, got)
}

func TestFragmentCreateFillsDefaults(t *testing.T) {
	got := Fragment(KindModule, []any{"Billing"}, ModeCreate)

	require.Len(t, got, 1)
	m := got[0]
	assert.Equal(t, "Billing", m["name"])
	assert.Equal(t, "backend", m["type"])
	assert.Equal(t, "planned", m["status"])
	assert.Equal(t, "medium", m["estimatedComplexity"])
	assert.Equal(t, "", m["description"])
	assert.Equal(t, []any{}, m["dependencies"])
	assert.NotEmpty(t, m["id"])
}

func TestFragmentInvalidEnum(t *testing.T) {
	raw := []any{map[string]any{"name": "X", "status": "banana"}}

	patched := Fragment(KindModule, raw, ModePatch)
	assert.Equal(t, []types.Item{{"name": "X"}}, patched)

	created := Fragment(KindModule, raw, ModeCreate)
	require.Len(t, created, 1)
	assert.Equal(t, "planned", created[0]["status"])
}

func TestFragmentNilAndWrappers(t *testing.T) {
	assert.Nil(t, Fragment(KindModule, nil, ModePatch))
	assert.Empty(t, Fragment(KindModule, []any{}, ModePatch))

	got := Fragment(KindModule, map[string]any{"modules": []any{"A", "B"}}, ModePatch)
	assert.Equal(t, []types.Item{{"name": "A"}, {"name": "B"}}, got)

	single := Fragment(KindModule, map[string]any{"name": "Solo"}, ModePatch)
	assert.Equal(t, []types.Item{{"name": "Solo"}}, single)

	enveloped := Fragment(KindModule, map[string]any{
		"section": "modules",
		"payload": []any{map[string]any{"name": "auth", "status": "completed"}},
	}, ModePatch)
	assert.Equal(t, []types.Item{{"name": "auth", "status": "completed"}}, enveloped)
}

func TestFragmentEndpoints(t *testing.T) {
	raw := []any{
		"post /users",
		map[string]any{
			"route": "/items",
			"verb":  "delete",
			"auth":  "yes",
			"responses": map[string]any{
				"200": "OK",
				"404": map[string]any{"description": "missing"},
			},
		},
	}

	got := Fragment(KindEndpoint, raw, ModePatch)

	require.Len(t, got, 2)
	assert.Equal(t, types.Item{"method": "POST", "path": "/users"}, got[0])
	assert.Equal(t, types.Item{
		"method":       "DELETE",
		"path":         "/items",
		"authRequired": true,
		"responses": []any{
			map[string]any{"statusCode": 200, "description": "OK"},
			map[string]any{"statusCode": 404, "description": "missing"},
		},
	}, got[1])
}

func TestFragmentEntityNestedFields(t *testing.T) {
	raw := []any{map[string]any{
		"name": "User",
		"columns": map[string]any{
			"email": "string",
			"id":    map[string]any{"type": "uuid", "pk": "true"},
		},
	}}

	got := Fragment(KindEntity, raw, ModeCreate)

	require.Len(t, got, 1)
	assert.Equal(t, "User", got[0]["entity"])
	fields, ok := got[0]["fields"].([]any)
	require.True(t, ok)
	require.Len(t, fields, 2)

	email := fields[0].(map[string]any)
	assert.Equal(t, "email", email["name"])
	assert.Equal(t, "string", email["type"])
	assert.Equal(t, false, email["required"])
	assert.Equal(t, []any{}, email["nested_fields"])

	id := fields[1].(map[string]any)
	assert.Equal(t, "uuid", id["type"])
	assert.Equal(t, true, id["primary_key"])
}

func TestFragmentKeepsUncoercibleAlias(t *testing.T) {
	raw := []any{map[string]any{"name": "A", "desc": map[string]any{"x": 1}}}

	got := Fragment(KindModule, raw, ModePatch)

	assert.Equal(t, []types.Item{{"name": "A", "desc": map[string]any{"x": 1}}}, got)
}

func TestFragmentCaseInsensitiveKeys(t *testing.T) {
	raw := []any{map[string]any{"Name": "Auth", "Estimated-Complexity": "complex"}}

	got := Fragment(KindModule, raw, ModePatch)

	assert.Equal(t, []types.Item{{"name": "Auth", "estimatedComplexity": "high"}}, got)
}

func TestFragmentPhaseOrder(t *testing.T) {
	raw := []any{"MVP", map[string]any{"name": "Beta", "order": 5.0}}

	got := Fragment(KindPhase, raw, ModeCreate)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0]["order"])
	assert.Equal(t, 5, got[1]["order"])
}

func TestHasIdentity(t *testing.T) {
	assert.True(t, HasIdentity(KindModule, types.Item{"name": "A"}))
	assert.False(t, HasIdentity(KindModule, types.Item{"name": "  "}))
	assert.True(t, HasIdentity(KindEntity, types.Item{"table_name": "users"}))
	assert.False(t, HasIdentity(KindEndpoint, types.Item{"method": "GET"}))
}

func TestItemNormalizesSingleElement(t *testing.T) {
	it, ok := Item(KindEndpoint, "GET /health", ModePatch)
	require.True(t, ok)
	assert.Equal(t, types.Item{"method": "GET", "path": "/health"}, it)

	_, ok = Item(KindEndpoint, "   ", ModePatch)
	assert.False(t, ok)
}

func TestTechStack(t *testing.T) {
	raw := map[string]any{
		"frontend": []any{"React", "TypeScript"},
		"backend":  map[string]any{"framework": "Gin"},
		"db":       "Postgres, Redis, Elastic, ent, atlas, extra1",
	}

	got, ok := TechStack(raw)

	require.True(t, ok)
	assert.Equal(t, "React", got.Frontend["framework"])
	assert.Equal(t, "TypeScript", got.Frontend["language"])
	assert.Equal(t, "", got.Frontend["ui_library"])
	assert.Equal(t, "Gin", got.Backend["framework"])
	assert.Equal(t, "", got.Backend["runtime"])
	assert.Equal(t, "Postgres", got.Database["primary"])
	assert.Equal(t, "atlas", got.Database["migrations"])
	assert.Equal(t, []any{"extra1"}, got.Database[ExtraField])
	assert.Len(t, got.Infrastructure, len(CategoryFields(CategoryInfrastructure)))

	_, ok = TechStack([]any{"React"})
	assert.False(t, ok)
}

func TestTechStackMixedList(t *testing.T) {
	raw := map[string]any{"infra": []any{"Fly.io", map[string]any{"monitoring": "Grafana"}, "GitHub Actions"}}

	got, ok := TechStack(raw)

	require.True(t, ok)
	assert.Equal(t, "Fly.io", got.Infrastructure["hosting"])
	assert.Equal(t, "GitHub Actions", got.Infrastructure["ci_cd"])
	assert.Equal(t, "Grafana", got.Infrastructure["monitoring"])
}

func TestTreeShapes(t *testing.T) {
	s, ok := Tree(map[string]any{
		"frontend": []any{"components", "pages"},
		"backend":  nil,
	})
	require.True(t, ok)
	assert.Equal(t, dirtree.Tree{
		"frontend": dirtree.Tree{"components": "", "pages": ""},
		"backend":  "",
	}, s.Tree)
	assert.Empty(t, s.Entries)

	s, ok = Tree([]any{
		map[string]any{"path": "src/pages", "description": "Pages"},
		"lib/utils",
		map[string]any{"description": "no path"},
	})
	require.True(t, ok)
	assert.Equal(t, []dirtree.Entry{
		{Path: "src/pages", Description: "Pages"},
		{Path: "lib/utils"},
	}, s.Entries)

	s, ok = Tree(map[string]any{"paths": []any{"api/users"}})
	require.True(t, ok)
	assert.Equal(t, []dirtree.Entry{{Path: "api/users"}}, s.Entries)

	_, ok = Tree("src")
	assert.False(t, ok)
}

func TestTopLevel(t *testing.T) {
	raw := map[string]any{"architecture": map[string]any{
		"project_name": "Shop",
		"tech_stack":   map[string]any{},
		"endpoints":    []any{},
		"roadmap":      nil,
	}}

	got, ok := TopLevel(raw)

	require.True(t, ok)
	assert.Equal(t, map[string]any{
		FieldName:         "Shop",
		FieldTechStack:    map[string]any{},
		FieldAPIEndpoints: []any{},
	}, got)

	_, ok = TopLevel("nope")
	assert.False(t, ok)
}
