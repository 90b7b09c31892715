package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	objRegex = regexp.MustCompile(`(?s)\{.*\}`)
	arrRegex = regexp.MustCompile(`(?s)\[.*\]`)
)

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// ExtractJSON extracts JSON content from a text string
// It looks for content between [ and ] or { and } brackets
func ExtractJSON(text string) (string, error) {
	for _, re := range []*regexp.Regexp{arrRegex, objRegex} {
		match := re.FindString(text)
		if match == "" {
			continue
		}
		var v interface{}
		if err := json.Unmarshal([]byte(match), &v); err == nil {
			return match, nil
		}
	}
	return "", fmt.Errorf("no valid JSON found in text")
}

// GetStringValue retrieves a string value from a map using multiple possible keys
// It tries each key in order and returns the first non-empty value found
func GetStringValue(data map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		if val, ok := data[key]; ok {
			if strVal, ok := val.(string); ok && strings.TrimSpace(strVal) != "" {
				return strings.TrimSpace(strVal), true
			}
		}
	}
	return "", false
}
