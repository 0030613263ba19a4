package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator checks a decoded value. A non-nil error rejects the output.
type SchemaValidator[T any] func(T) error

// ExtractJSON decodes the first JSON object found in raw model output.
// Markdown fences, surrounding prose, comments, trailing commas and numbers
// written as ".8" are tolerated.
func ExtractJSON[T any](raw string, validate SchemaValidator[T]) (T, error) {
	var zero T

	out, err := decodeBlock[T](raw, '{', '}')
	if err != nil {
		return zero, err
	}
	if validate != nil {
		if err := validate(out); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return out, nil
}

// ExtractJSONArray decodes the first JSON array in raw model output. A lone
// object is accepted as a one-element list.
func ExtractJSONArray[T any](raw string) ([]T, error) {
	items, err := decodeBlock[[]T](raw, '[', ']')
	if err == nil {
		return items, nil
	}
	one, objErr := decodeBlock[T](raw, '{', '}')
	if objErr != nil {
		return nil, err
	}
	return []T{one}, nil
}

func decodeBlock[T any](raw string, opening, closing byte) (T, error) {
	var out T

	block := balancedBlock(unfence(raw), opening, closing)
	if block == "" {
		return out, fmt.Errorf("%w: no JSON %c...%c block in response", ErrInvalidOutput, opening, closing)
	}
	if err := json.Unmarshal([]byte(sanitize(block)), &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return out, nil
}

// unfence drops markdown fence lines and keeps everything else.
func unfence(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// jsonScanner walks JSON text and reports whether each byte sits inside a
// string literal.
type jsonScanner struct {
	inString bool
	escaped  bool
}

// step consumes c and returns true when c is part of a string literal,
// including its quotes.
func (sc *jsonScanner) step(c byte) bool {
	switch {
	case sc.escaped:
		sc.escaped = false
		return true
	case sc.inString && c == '\\':
		sc.escaped = true
		return true
	case c == '"':
		sc.inString = !sc.inString
		return true
	default:
		return sc.inString
	}
}

// balancedBlock returns the first opening...closing span with balanced nesting,
// ignoring delimiters inside strings.
func balancedBlock(s string, opening, closing byte) string {
	start := strings.IndexByte(s, opening)
	if start < 0 {
		return ""
	}
	var sc jsonScanner
	depth := 0
	for i := start; i < len(s); i++ {
		if sc.step(s[i]) {
			continue
		}
		switch s[i] {
		case opening:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// sanitize repairs what models commonly get wrong in JSON, outside strings:
// line and block comments, ".5" style numbers and trailing commas.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	var sc jsonScanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.step(c) {
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += end + 3
			}
			continue
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsNumber(lastSignificant(b.String())):
			b.WriteByte('0')
		case c == ',' && closesNext(s, i+1):
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func lastSignificant(s string) byte {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return 0
	}
	return s[len(s)-1]
}

// closesNext reports whether the next significant byte after i closes a
// container, making a comma at i-1 a trailing comma.
func closesNext(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

func startsNumber(prev byte) bool {
	switch prev {
	case 0, ':', ',', '[', '{', '-':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
