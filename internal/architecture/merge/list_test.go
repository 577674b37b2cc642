package merge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archrecon/internal/types"
)

func TestResolveKeyPriority(t *testing.T) {
	k, ok := ResolveKey(types.SectionDatabase, types.Item{"entity": "User", "table_name": "users"})
	require.True(t, ok)
	assert.Equal(t, "user", k)

	k, ok = ResolveKey(types.SectionDatabase, types.Item{"entity": "", "table_name": "Orders"})
	require.True(t, ok)
	assert.Equal(t, "orders", k)

	k, ok = ResolveKey(types.SectionEndpoints, types.Item{"route": "/Users", "summary": "x"})
	require.True(t, ok)
	assert.Equal(t, "/users", k)

	_, ok = ResolveKey(types.SectionModules, types.Item{"description": "no name"})
	assert.False(t, ok)

	_, ok = ResolveKey(types.SectionStructure, types.Item{"name": "x"})
	assert.False(t, ok)
}

func TestMergeListNilInputs(t *testing.T) {
	incoming := []types.Item{{"name": "Auth"}}
	assert.Equal(t, incoming, MergeList(nil, incoming, types.SectionModules))
	assert.Empty(t, MergeList(nil, nil, types.SectionModules))
	assert.NotNil(t, MergeList(nil, nil, types.SectionModules))

	existing := []types.Item{{"name": "Auth"}}
	assert.Equal(t, existing, MergeList(existing, nil, types.SectionModules))
}

func TestMergeListCaseInsensitiveIdentity(t *testing.T) {
	existing := []types.Item{{"name": "Login"}}
	incoming := []types.Item{{"name": "login", "description": "d"}}

	out := MergeList(existing, incoming, types.SectionModules)

	require.Len(t, out, 1)
	assert.Equal(t, "Login", out[0]["name"])
	assert.Equal(t, "d", out[0]["description"])
}

func TestMergeListKeepsPositionAndAppendsNew(t *testing.T) {
	existing := []types.Item{
		{"name": "A", "status": "planned"},
		{"name": "B", "status": "planned"},
	}
	incoming := []types.Item{
		{"name": "C"},
		{"name": "a", "status": "completed"},
		{"name": "D"},
	}

	out, st := Lister{}.Merge(existing, incoming, types.SectionModules)

	names := make([]any, 0, len(out))
	for _, it := range out {
		names = append(names, it["name"])
	}
	assert.Equal(t, []any{"A", "B", "C", "D"}, names)
	assert.Equal(t, "completed", out[0]["status"])
	assert.Equal(t, Stats{Added: 2, Updated: 1}, st)
}

func TestMergeListAbsentFieldsAreRetained(t *testing.T) {
	existing := []types.Item{{"path": "/users", "method": "GET", "summary": "list"}}
	incoming := []types.Item{{"path": "/users", "summary": "List users"}}

	out := MergeList(existing, incoming, types.SectionEndpoints)

	require.Len(t, out, 1)
	assert.Equal(t, "GET", out[0]["method"])
	assert.Equal(t, "List users", out[0]["summary"])
}

func TestMergeListDoesNotMutateInputs(t *testing.T) {
	stored := types.Item{"name": "Auth", "status": "planned"}
	existing := []types.Item{stored}
	incoming := []types.Item{{"name": "auth", "status": "completed"}}

	_ = MergeList(existing, incoming, types.SectionModules)

	assert.Equal(t, "planned", stored["status"])
	assert.Len(t, existing, 1)
}

func TestMergeListIdempotent(t *testing.T) {
	existing := []types.Item{
		{"name": "Auth", "status": "planned"},
		{"name": "Billing"},
	}
	incoming := []types.Item{
		{"name": "auth", "status": "completed", "features": []any{"login"}},
		{"name": "Search"},
	}

	once := MergeList(existing, incoming, types.SectionModules)
	twice := MergeList(once, incoming, types.SectionModules)

	assert.Equal(t, once, twice)
}

func TestMergeListNoKeyNeverDrops(t *testing.T) {
	out := MergeList([]types.Item{}, []types.Item{{}}, types.SectionModules)
	assert.Len(t, out, 1)

	existing := []types.Item{{"description": "anonymous"}, {"name": "Auth"}}
	out = MergeList(existing, []types.Item{{"description": "another"}}, types.SectionModules)
	assert.Len(t, out, 3)
}

func TestMergeListDuplicateStoredKeysStaySeparate(t *testing.T) {
	existing := []types.Item{{"name": "Auth", "v": 1}, {"name": "auth", "v": 2}}

	out := MergeList(existing, []types.Item{{"name": "AUTH", "v": 3}}, types.SectionModules)

	require.Len(t, out, 2)
	assert.Equal(t, 3, out[0]["v"])
	assert.Equal(t, 2, out[1]["v"])
}

func TestListerSyntheticKeysAvoidCollisions(t *testing.T) {
	n := 0
	l := Lister{NewKey: func() string {
		n++
		if n < 3 {
			return "same"
		}
		return fmt.Sprintf("k%d", n)
	}}

	out, st := l.Merge([]types.Item{{}}, []types.Item{{}, {}}, types.SectionModules)

	assert.Len(t, out, 3)
	assert.Equal(t, 2, st.Unkeyed)
}

func TestAsItemsCoercesNonLists(t *testing.T) {
	assert.Nil(t, AsItems("not a list"))
	assert.Nil(t, AsItems(map[string]any{"name": "x"}))

	got := AsItems([]any{map[string]any{"name": "x"}, "y", nil})
	assert.Equal(t, []types.Item{{"name": "x"}, {"value": "y"}}, got)
}

func TestListerStuckKeyGeneratorFallsBack(t *testing.T) {
	calls := 0
	l := Lister{NewKey: func() string {
		calls++
		return "stuck"
	}}

	out, st := l.Merge(nil, []types.Item{{"v": 1}, {"v": 2}, {"v": 3}}, types.SectionModules)

	require.Len(t, out, 3)
	assert.Equal(t, 3, st.Unkeyed)
	assert.Equal(t, []any{1, 2, 3}, []any{out[0]["v"], out[1]["v"], out[2]["v"]})
	assert.LessOrEqual(t, calls, 1+2*maxKeyAttempts)
}
