package codec_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/myquest/pkg/codec"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type period struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Start string `json:"start" yaml:"start" toml:"start"`
}

type document struct {
	Name     string         `json:"name" yaml:"name" toml:"name"`
	Count    int            `json:"count" yaml:"count" toml:"count"`
	Tags     []string       `json:"tags" yaml:"tags" toml:"tags"`
	Scores   map[string]int `json:"scores" yaml:"scores" toml:"scores"`
	Periods  []period       `json:"periods" yaml:"periods" toml:"periods"`
	Selected string         `json:"-" yaml:"-" toml:"-"`
}

func sample() document {
	return document{
		Name:   "John Doe",
		Count:  3,
		Tags:   []string{"a", "b"},
		Scores: map[string]int{"x": 1, "y": 2},
		Periods: []period{
			{Name: "Childhood", Start: "2000-01"},
			{Name: "University", Start: "2018-01"},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON, codec.YAML, codec.TOML} {
		t.Run(c.Name(), func(t *testing.T) {
			in := sample()
			data, err := c.Encode(in)
			require.NoError(t, err)

			var out document
			require.NoError(t, c.Decode(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestTransientFieldsAreNotPersisted(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON, codec.YAML, codec.TOML} {
		t.Run(c.Name(), func(t *testing.T) {
			in := sample()
			in.Selected = "University"

			data, err := c.Encode(in)
			require.NoError(t, err)
			assert.NotContains(t, strings.ToLower(string(data)), "selected")

			var out document
			require.NoError(t, c.Decode(data, &out))
			assert.Empty(t, out.Selected)
		})
	}
}

func TestJSONIsPrettyPrinted(t *testing.T) {
	data, err := codec.JSON.Encode(map[string]int{"count": 0})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"count\": 0\n}\n", string(data))
}

func TestYAMLUsesTwoSpaceIndent(t *testing.T) {
	data, err := codec.YAML.Encode(map[string][]string{"tags": {"a"}})
	require.NoError(t, err)
	assert.Equal(t, "tags:\n  - a\n", string(data))
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		codec codec.Codec
		input string
	}{
		{codec.JSON, "{not json"},
		{codec.YAML, "name: [unterminated"},
		{codec.TOML, "name = "},
	}

	for _, tt := range tests {
		t.Run(tt.codec.Name(), func(t *testing.T) {
			var out document
			err := tt.codec.Decode([]byte(tt.input), &out)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrDecode), "got %v", err)
		})
	}
}

func TestEncodeUnsupportedValue(t *testing.T) {
	bad := map[string]any{"ch": make(chan int)}
	for _, c := range []codec.Codec{codec.JSON, codec.YAML} {
		t.Run(c.Name(), func(t *testing.T) {
			_, err := c.Encode(bad)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrEncode), "got %v", err)
		})
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"json", "json", false},
		{"JSON", "json", false},
		{".yaml", "yaml", false},
		{"yml", "yaml", false},
		{"toml", "toml", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := codec.ByName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}
}

func TestForPath(t *testing.T) {
	c, err := codec.ForPath("/data/timelines/default.yml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", c.Name())

	c, err = codec.ForPath("/data/habits/habits.json")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Extension())

	_, err = codec.ForPath("/data/noext")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"json", "toml", "yaml"}, codec.Names())
}
