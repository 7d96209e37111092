package oracle

import "strings"

// ExtractObject returns the first balanced brace-delimited object embedded
// in raw, tolerating prose or code fences around the JSON payload. It
// returns "" when no balanced object exists. Braces inside JSON strings are
// skipped so payloads like {"why":"use {x}"} survive extraction.
func ExtractObject(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}
