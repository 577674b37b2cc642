package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValueObjectAndArray(t *testing.T) {
	v, err := ParseValue([]byte(`{"name":"Auth"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Auth"}, v)

	v, err = ParseValue([]byte(`[{"name":"Auth"}]`))
	require.NoError(t, err)
	assert.Len(t, v, 1)
}

func TestParseValueUnwrapsQuotedDocument(t *testing.T) {
	v, err := ParseValue([]byte(`"{\"name\":\"Auth\"}"`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Auth"}, v)
}

func TestParseValueRejectsGarbage(t *testing.T) {
	_, err := ParseValue([]byte(`{name: Auth`))
	require.Error(t, err)

	_, err = ParseValue([]byte("   "))
	require.ErrorIs(t, err, ErrEmptyPayload)
}

func TestMarshalNoEscapeKeepsHTML(t *testing.T) {
	b, err := MarshalNoEscape(map[string]string{"path": "/users/<id>"})
	require.NoError(t, err)
	assert.Equal(t, `{"path":"/users/<id>"}`, string(b))
}

func TestDecode(t *testing.T) {
	type module struct {
		Name     string   `json:"name"`
		Features []string `json:"features"`
	}
	var m module
	require.NoError(t, Decode(map[string]any{"name": "Auth", "features": []any{"login"}}, &m))
	assert.Equal(t, module{Name: "Auth", Features: []string{"login"}}, m)
}

func TestMarshalNoEscapeIndent(t *testing.T) {
	b, err := MarshalNoEscapeIndent(map[string]string{"path": "/a&b"}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"path\": \"/a&b\"\n}", string(b))
}
