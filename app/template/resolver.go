package template

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/jo-hoe/go-custom-uploader/app/query"
)

// Family identifies the syntax family of a placeholder token.
type Family int

const (
	// FamilyLiteral marks text that only looks like a placeholder and is rendered verbatim.
	FamilyLiteral Family = iota
	FamilyInput
	FamilyFileName
	FamilyJSON
	FamilyXML
	FamilyRegex
	FamilyName
	// FamilyUnknown marks "family:argument" tokens of a family that does not exist. They always resolve to Missing.
	FamilyUnknown
)

// Resolution is the outcome of resolving a placeholder.
type Resolution int

const (
	Resolved Resolution = iota
	Missing
	Literal
)

var (
	familyRegex     = regexp.MustCompile(`^([A-Za-z][0-9A-Za-z_]*):`)
	identifierRegex = regexp.MustCompile(`^[A-Za-z_][0-9A-Za-z_.\-]*$`)
)

// Placeholder is a parsed placeholder token. Parsing is pure, so a Placeholder
// can be created once and resolved against many contexts.
type Placeholder struct {
	Token  string
	Family Family
	Arg    string

	regex    *query.Regex
	regexErr error
}

// ParsePlaceholder classifies a token (the text between the delimiters) into its family.
func ParsePlaceholder(token string) Placeholder {
	p := Placeholder{Token: token}
	switch {
	case token == "input":
		p.Family = FamilyInput
	case token == "filename":
		p.Family = FamilyFileName
	case strings.HasPrefix(token, "json:"):
		p.Family = FamilyJSON
		p.Arg = strings.TrimPrefix(token, "json:")
	case strings.HasPrefix(token, "xml:"):
		p.Family = FamilyXML
		p.Arg = strings.TrimPrefix(token, "xml:")
	case strings.HasPrefix(token, query.RegexPrefix):
		p.Family = FamilyRegex
		p.Arg = strings.TrimPrefix(token, query.RegexPrefix)
		p.regex, p.regexErr = query.CompileRegex(p.Arg)
	case identifierRegex.MatchString(token):
		p.Family = FamilyName
		p.Arg = token
	case familyRegex.MatchString(token):
		p.Family = FamilyUnknown
	default:
		p.Family = FamilyLiteral
	}
	return p
}

// Resolve resolves a single token against the context.
func Resolve(token string, ctx *Context) (string, Resolution) {
	p := ParsePlaceholder(token)
	return p.Resolve(ctx)
}

// Resolve returns the value of the placeholder. Values are never expanded again,
// so a value containing placeholder syntax is returned verbatim.
func (p *Placeholder) Resolve(ctx *Context) (string, Resolution) {
	if ctx == nil {
		ctx = &Context{}
	}
	switch p.Family {
	case FamilyInput:
		return ctx.Input(), Resolved
	case FamilyFileName:
		return ctx.FileName, Resolved
	case FamilyJSON:
		raw, ok := ctx.Prior(RawResponseKey)
		if !ok {
			return p.missing("no previous response")
		}
		doc, err := query.ParseJSON([]byte(raw))
		if err != nil {
			return p.missing(err.Error())
		}
		v, err := doc.Get(p.Arg)
		if err != nil {
			return p.missing(err.Error())
		}
		return v, Resolved
	case FamilyXML:
		raw, ok := ctx.Prior(RawResponseKey)
		if !ok {
			return p.missing("no previous response")
		}
		doc, err := query.ParseXML([]byte(raw))
		if err != nil {
			return p.missing(err.Error())
		}
		v, err := doc.Get(p.Arg)
		if err != nil {
			return p.missing(err.Error())
		}
		return v, Resolved
	case FamilyRegex:
		if p.regexErr != nil {
			return p.missing(p.regexErr.Error())
		}
		raw, ok := ctx.Prior(RawResponseKey)
		if !ok {
			return p.missing("no previous response")
		}
		v, err := p.regex.Find(raw)
		if err != nil {
			return p.missing(err.Error())
		}
		return v, Resolved
	case FamilyName:
		if v, ok := ctx.Prior(p.Arg); ok {
			return v, Resolved
		}
		return "", Literal
	case FamilyUnknown:
		return p.missing("unknown placeholder family")
	default:
		return "", Literal
	}
}

func (p *Placeholder) missing(reason string) (string, Resolution) {
	slog.Debug("placeholder not resolved; substituting empty string", "token", p.Token, "reason", reason)
	return "", Missing
}
