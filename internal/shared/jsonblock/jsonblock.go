// Package jsonblock pulls a JSON document out of model-generated text.
package jsonblock

import "strings"

// Extract returns the outermost JSON array or object in text, ignoring
// Markdown code fences and any prose around it. ok is false when text holds
// no balanced '[' ... ']' or '{' ... '}' span.
func Extract(text string) (string, bool) {
	s := stripFences(strings.TrimSpace(text))
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", false
	}
	closer := byte(']')
	if s[start] == '{' {
		closer = '}'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		s = s[nl+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
