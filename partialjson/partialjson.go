// Package partialjson repairs truncated JSON fragments as they stream from a
// model. Tool call arguments arrive incrementally; this package completes a
// prefix into the closest valid JSON document so callers can act on partial
// arguments before the stream finishes.
//
// Repair is best effort and never panics. A fragment that cannot be repaired
// reports failure instead of returning malformed output.
package partialjson

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Complete repairs a JSON fragment into a valid document. It closes unfinished
// strings, trims trailing commas, substitutes null for values that have not
// started and closes open arrays and objects. When the direct repair fails, a
// second pass drops the dangling token at the end of the fragment and retries.
// The boolean reports whether a valid document was produced.
func Complete(fragment string) (string, bool) {
	s := strings.TrimSpace(fragment)
	if s == "" {
		return "", false
	}

	if repaired, ok := repair(s); ok {
		return repaired, true
	}

	trimmed := trimDanglingToken(s)
	if trimmed != "" && trimmed != s {
		if repaired, ok := repair(trimmed); ok {
			return repaired, true
		}
	}

	return "", false
}

// Parse completes the fragment and decodes the repaired document.
func Parse(fragment string) (any, bool) {
	repaired, ok := Complete(fragment)
	if !ok {
		return nil, false
	}

	var value any
	if err := json.Unmarshal([]byte(repaired), &value); err != nil {
		return nil, false
	}
	return value, true
}

// ParseObject is Parse for callers that expect a JSON object, such as tool
// call arguments.
func ParseObject(fragment string) (map[string]any, bool) {
	value, ok := Parse(fragment)
	if !ok {
		return nil, false
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}
	return obj, true
}

// repair performs a single completion pass over the fragment.
func repair(s string) (string, bool) {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) == 0 || stack[len(stack)-1] != '{' {
				return "", false
			}
			stack = stack[:len(stack)-1]
		case ']':
			if len(stack) == 0 || stack[len(stack)-1] != '[' {
				return "", false
			}
			stack = stack[:len(stack)-1]
		}
	}

	out := s
	if inString {
		if escaped {
			// A lone trailing backslash would escape our closing quote.
			out = out[:len(out)-1]
		}
		out += `"`
	}

	out = strings.TrimRight(out, " \t\r\n")
	if strings.HasSuffix(out, ",") {
		out = strings.TrimRight(out[:len(out)-1], " \t\r\n")
	}
	if strings.HasSuffix(out, ":") {
		out += " null"
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			out += "}"
		} else {
			out += "]"
		}
	}

	if !gjson.Valid(out) {
		return "", false
	}
	return out, true
}

// trimDanglingToken cuts the fragment back to the last structural boundary,
// discarding an incomplete literal or object key that the direct repair could
// not absorb.
func trimDanglingToken(s string) string {
	inString := false
	escaped := false
	boundary := -1

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[', ',', ':':
			boundary = i
		}
	}

	if boundary < 0 {
		return ""
	}
	return s[:boundary+1]
}
