package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIngredientsText(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "should collapse bullet markers into newlines",
			input:    "* flour\n* sugar\n* eggs",
			expected: "flour\nsugar\neggs",
		},
		{
			name:     "should keep plain newline delimited text",
			input:    "flour\nsugar",
			expected: "flour\nsugar",
		},
		{
			name:     "should handle windows line endings",
			input:    "* flour\r\n* sugar",
			expected: "flour\nsugar",
		},
		{
			name:     "should drop blank lines",
			input:    "* flour\n\n* sugar\n",
			expected: "flour\nsugar",
		},
		{
			name:     "should return empty string for blank input",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIngredientsText(tt.input))
		})
	}
}

func TestParseIngredientsJSON(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{name: "array of strings", raw: `["flour","sugar","eggs"]`, expected: "flour\nsugar\neggs"},
		{name: "array with bullet items", raw: `["* flour","* sugar"]`, expected: "flour\nsugar"},
		{name: "bullet text string", raw: `"* flour\n* sugar\n* eggs"`, expected: "flour\nsugar\neggs"},
		{name: "string holding a json array", raw: `"[\"flour\",\"sugar\"]"`, expected: "flour\nsugar"},
		{name: "number", raw: `42`, wantErr: true},
		{name: "object", raw: `{"flour":"1 cup"}`, wantErr: true},
		{name: "array of numbers", raw: `[1,2]`, wantErr: true},
		{name: "malformed json array in string", raw: `"[flour, sugar"`, wantErr: true},
		{name: "empty", raw: ``, wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseIngredientsJSON(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidIngredients)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
