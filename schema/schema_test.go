package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	Name    string   `json:"name" jsonschema:"title=name,description=Name of the place" validate:"required"`
	Reasons []string `json:"reasons,omitempty" jsonschema:"title=reasons,description=Why the place was chosen"`
}

func (p place) String() string { return p.Name }

func TestUnmarshalText(t *testing.T) {
	out := new(String)
	require.NoError(t, Unmarshal("## Day 1\n- Colosseum", out))
	assert.Equal(t, "## Day 1\n- Colosseum", out.String())
}

func TestUnmarshalStructured(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "plain json", content: `{"name":"Florence","reasons":["art"]}`, want: "Florence"},
		{name: "fenced json", content: "```json\n{\"name\":\"Rome\"}\n```", want: "Rome"},
		{name: "trailing comma", content: `{"name":"Venice",}`, want: "Venice"},
		{name: "missing required", content: `{"reasons":["food"]}`, wantErr: true},
		{name: "empty", content: "  ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := new(place)
			err := Unmarshal(tt.content, out)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Name)
		})
	}
}

func TestJSONSchema(t *testing.T) {
	s := JSONSchema(new(place))
	assert.True(t, strings.Contains(s, `"name"`), s)
	assert.True(t, strings.Contains(s, "Why the place was chosen"), s)
	assert.False(t, strings.Contains(s, "$ref"), s)
}

func TestIsText(t *testing.T) {
	assert.True(t, IsText(new(String)))
	assert.True(t, IsText(String("x")))
	assert.False(t, IsText(new(place)))
}
