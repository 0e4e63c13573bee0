package services

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NormalizeIngredientsText collapses bullet style "* item" lines into one
// ingredient per line.
func NormalizeIngredientsText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n* ", "\n")
	text = strings.TrimPrefix(text, "* ")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// NormalizeIngredientsList normalizes every item and joins them with newlines
func NormalizeIngredientsList(items []string) string {
	normalized := make([]string, 0, len(items))
	for _, item := range items {
		if text := NormalizeIngredientsText(item); text != "" {
			normalized = append(normalized, text)
		}
	}
	return strings.Join(normalized, "\n")
}

// ParseIngredientsJSON accepts a JSON array of strings or a JSON string.
// Any other JSON shape yields ErrInvalidIngredients.
func ParseIngredientsJSON(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", ErrInvalidIngredients
	}

	switch trimmed[0] {
	case '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return "", ErrInvalidIngredients
		}
		return NormalizeIngredientsList(items), nil
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", ErrInvalidIngredients
		}
		return ParseIngredientsText(text)
	default:
		return "", ErrInvalidIngredients
	}
}

// ParseIngredientsText handles a single text value, which is either bullet
// text or a JSON encoded array of strings.
func ParseIngredientsText(text string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(text), "[") {
		var items []string
		if err := json.Unmarshal([]byte(text), &items); err != nil {
			return "", ErrInvalidIngredients
		}
		return NormalizeIngredientsList(items), nil
	}
	return NormalizeIngredientsText(text), nil
}
