package common

import (
	"encoding/json"
	"strings"
)

// fieldNameMap maps verbose response field names to terse equivalents.
var fieldNameMap = map[string]string{
	"url":    "u",
	"source": "src",
	"status": "s",
	"code":   "c",
	"error":  "e",
	"detail": "d",
	"method": "m",
}

// FilterResultFields projects a result struct down to the requested
// comma-separated field list. An empty list keeps every field.
func FilterResultFields(result interface{}, fieldsStr string, isTerse bool) map[string]interface{} {
	if fieldsStr == "" {
		return structToMap(result)
	}

	requestedFields := strings.Split(fieldsStr, ",")
	for i := range requestedFields {
		requestedFields[i] = strings.TrimSpace(requestedFields[i])
	}

	// Build set of fields to include (translate verbose->terse if needed)
	includeFields := make(map[string]bool)
	for _, field := range requestedFields {
		if isTerse {
			if terseField, ok := fieldNameMap[field]; ok {
				includeFields[terseField] = true
			} else {
				includeFields[field] = true
			}
		} else {
			includeFields[field] = true
		}
	}

	fullMap := structToMap(result)

	filtered := make(map[string]interface{})
	for key, value := range fullMap {
		if includeFields[key] {
			filtered[key] = value
		}
	}

	return filtered
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
func structToMap(obj interface{}) map[string]interface{} {
	data, _ := json.Marshal(obj)
	var result map[string]interface{}
	_ = json.Unmarshal(data, &result)
	return result
}

// SanitizeURL performs basic cleanup on link candidates to handle
// common copy-paste and markup artifacts before base resolution.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// Angle-bracketed autolink leftovers: <https://example.com>
	if strings.HasPrefix(cleaned, "<") && strings.HasSuffix(cleaned, ">") {
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	// Trailing sentence punctuation from prose scans. A closing paren
	// only comes off when the candidate has no matching opener, so
	// wiki-style paths like /foo_(bar) survive.
	for {
		trimmed := strings.TrimRight(cleaned, ",.;:!?\"'")
		if strings.HasSuffix(trimmed, ")") && strings.Count(trimmed, ")") > strings.Count(trimmed, "(") {
			trimmed = strings.TrimSuffix(trimmed, ")")
		}
		if trimmed == cleaned {
			break
		}
		cleaned = trimmed
	}

	return strings.TrimSpace(cleaned)
}
