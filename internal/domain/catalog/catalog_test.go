package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameRoundTrip(t *testing.T) {
	stored := NormalizeName("Data Science")
	assert.Equal(t, "data science", stored)
	assert.Equal(t, "Data science", DisplayName(stored))
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"cats":         "Cats",
		"CATS":         "Cats",
		"data science": "Data science",
		"élan vital":   "Élan vital",
		"9lives":       "9lives",
	}
	for in, want := range tests {
		assert.Equal(t, want, DisplayName(in), "input %q", in)
	}
}

func TestIsRootName(t *testing.T) {
	assert.True(t, IsRootName("Base"))
	assert.True(t, IsRootName("base"))
	assert.True(t, IsRootName("BASE"))
	assert.False(t, IsRootName("basement"))
	assert.False(t, IsRootName(""))
}

func TestShared(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want bool
	}{
		{"absent", nil, true},
		{"true", true, true},
		{"false", false, false},
		{"string true", "true", true},
		{"string TRUE", "TRUE", true},
		{"string False", "False", false},
		{"garbage string", "maybe", false},
		{"number", int64(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Shared(tt.in))
		})
	}
}

func TestValidTagKey(t *testing.T) {
	assert.True(t, ValidTagKey("license"))
	assert.True(t, ValidTagKey("_rows2"))
	assert.False(t, ValidTagKey("url"))
	assert.False(t, ValidTagKey("share_data"))
	assert.False(t, ValidTagKey("2fast"))
	assert.False(t, ValidTagKey("has space"))
	assert.False(t, ValidTagKey(""))
}

func TestTagMapping(t *testing.T) {
	props := map[string]interface{}{
		"name":          "iris",
		"url":           "https://example.org/iris.csv",
		"user":          "alice",
		"description":   "flowers",
		"last_accessed": "2024-01-01T00:00:00Z",
		"share_data":    true,
		"license":       "cc-by",
	}

	got := TagMapping(props)

	assert.Equal(t, map[string]interface{}{"name": "iris", "license": "cc-by"}, got)
	assert.Len(t, props, 7, "input must not be modified")
}
