// Package template compiles user authored templates into segments and renders them with a runtime context.
//
// A placeholder is written between curly braces, e.g. "https://x/{filename}?id={json:data.id}".
// Inside a placeholder "\{" and "\}" stand for literal braces. An opening brace
// that is never closed, or that is followed by another opening brace before it is
// closed, is ordinary text.
package template

import "strings"

// SegmentKind tags a compiled segment.
type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentPlaceholder
)

// Segment is one part of a compiled template.
type Segment struct {
	Kind SegmentKind
	// Text is the literal text, or for placeholders the source text including delimiters.
	Text        string
	Placeholder Placeholder
}

// Template is a compiled template. It is immutable once compiled and safe for concurrent rendering.
type Template []Segment

// Compile splits a template string into literal and placeholder segments. It never fails.
func Compile(input string) Template {
	var segments Template
	var literal strings.Builder

	flushLiteral := func() {
		if literal.Len() > 0 {
			segments = append(segments, Segment{Kind: SegmentLiteral, Text: literal.String()})
			literal.Reset()
		}
	}

	i := 0
	for i < len(input) {
		if input[i] != '{' {
			literal.WriteByte(input[i])
			i++
			continue
		}

		token, end, closed := scanToken(input, i+1)
		if !closed {
			// either end of input or a nested '{': the brace is text
			literal.WriteString(input[i:end])
			i = end
			continue
		}

		source := input[i : end+1]
		i = end + 1
		if token == "" {
			literal.WriteString(source)
			continue
		}
		p := ParsePlaceholder(token)
		if p.Family == FamilyLiteral {
			literal.WriteString(source)
			continue
		}
		flushLiteral()
		segments = append(segments, Segment{Kind: SegmentPlaceholder, Text: source, Placeholder: p})
	}
	flushLiteral()
	return segments
}

// scanToken reads a placeholder token starting at start. It returns the
// unescaped token, the index of the closing brace (or of the position where
// scanning stopped) and whether the token was closed.
func scanToken(input string, start int) (string, int, bool) {
	var token strings.Builder
	j := start
	for j < len(input) {
		switch c := input[j]; {
		case c == '\\' && j+1 < len(input) && (input[j+1] == '{' || input[j+1] == '}'):
			token.WriteByte(input[j+1])
			j += 2
		case c == '{':
			return "", j, false
		case c == '}':
			return token.String(), j, true
		default:
			token.WriteByte(c)
			j++
		}
	}
	return "", j, false
}

// Render concatenates the literal segments and the resolved placeholders.
// Missing placeholders render as an empty string.
func (t Template) Render(ctx *Context) string {
	var b strings.Builder
	for i := range t {
		s := &t[i]
		if s.Kind == SegmentLiteral {
			b.WriteString(s.Text)
			continue
		}
		value, resolution := s.Placeholder.Resolve(ctx)
		switch resolution {
		case Resolved:
			b.WriteString(value)
		case Literal:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// Expand compiles and renders input in one step.
func Expand(input string, ctx *Context) string {
	return Compile(input).Render(ctx)
}
