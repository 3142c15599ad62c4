package query

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// JSONDocument is a parsed JSON response. The zero value is not usable; use ParseJSON.
type JSONDocument struct {
	raw []byte
}

// ParseJSON validates data once so that paths can be evaluated against it repeatedly.
func ParseJSON(data []byte) (*JSONDocument, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return &JSONDocument{raw: data}, nil
}

// Get evaluates a JSON path against the document.
// Scalars are returned as their string form, objects and arrays as compact JSON.
func (d *JSONDocument) Get(path string) (string, error) {
	gpath, err := ToGJSONPath(path)
	if err != nil {
		return "", err
	}
	var result gjson.Result
	if gpath == "" {
		result = gjson.ParseBytes(d.raw)
	} else {
		result = gjson.GetBytes(d.raw, gpath)
	}
	if !result.Exists() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	switch result.Type {
	case gjson.Null:
		return "", fmt.Errorf("%w: %s is null", ErrNotFound, path)
	case gjson.JSON:
		return strings.TrimSpace(result.Raw), nil
	default:
		return result.String(), nil
	}
}

// ToGJSONPath converts the dot/bracket syntax used in definitions
// ("$.data.items[0].link", "data['file.name']", "data.link") to a gjson path.
func ToGJSONPath(path string) (string, error) {
	segments, err := splitJSONPath(path)
	if err != nil {
		return "", err
	}
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, escapeGJSON(s))
	}
	return strings.Join(escaped, "."), nil
}

func splitJSONPath(path string) ([]string, error) {
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, "$")

	segments := []string{}
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
	}

	for i := 0; i < len(p); i++ {
		c := p[i]
		switch c {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(p[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated '[' in '%s'", ErrInvalidPath, path)
			}
			inner := strings.TrimSpace(p[i+1 : i+end])
			if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0] {
				inner = inner[1 : len(inner)-1]
			} else if !isIndex(inner) {
				return nil, fmt.Errorf("%w: '[%s]' is neither an index nor a quoted key in '%s'", ErrInvalidPath, inner, path)
			}
			segments = append(segments, inner)
			i += end
		case ']':
			return nil, fmt.Errorf("%w: unexpected ']' in '%s'", ErrInvalidPath, path)
		default:
			current.WriteByte(c)
		}
	}
	flush()
	return segments, nil
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// escapeGJSON escapes the characters gjson treats as path syntax.
func escapeGJSON(segment string) string {
	var b strings.Builder
	for _, r := range segment {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
