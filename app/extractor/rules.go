package extractor

import (
	"errors"
	"fmt"

	"github.com/jo-hoe/go-custom-uploader/app/definition"
	"github.com/jo-hoe/go-custom-uploader/app/query"
)

// NewRules compiles the extraction rules of a definition in declaration order.
// Rules with an invalid expression are kept and report the problem when evaluated.
func NewRules(cfgs []definition.ExtractionRule) []Rule {
	rules := make([]Rule, 0, len(cfgs))
	for _, c := range cfgs {
		switch c.Kind {
		case definition.KindJSONPath:
			_, err := query.ToGJSONPath(c.Path)
			rules = append(rules, &JSONPathRule{name: c.ResultName, path: c.Path, err: err})
		case definition.KindXMLPath:
			rules = append(rules, &XMLPathRule{name: c.ResultName, path: c.Path})
		case definition.KindRegex:
			re, err := query.CompileRegex(c.Path)
			rules = append(rules, &RegexRule{name: c.ResultName, path: c.Path, re: re, err: err})
		default:
			rules = append(rules, &invalidRule{cfg: c})
		}
	}
	return rules
}

// -------------------- JSON_PATH --------------------

type JSONPathRule struct {
	name string
	path string
	err  error
}

func (r *JSONPathRule) ResultName() string { return r.name }
func (r *JSONPathRule) Kind() definition.RuleKind { return definition.KindJSONPath }
func (r *JSONPathRule) Path() string { return r.path }

func (r *JSONPathRule) Evaluate(p *Payload) (string, error) {
	if p.Type != definition.ResponseJSON {
		return "", fmt.Errorf("%w: JSON path on a %s response", ErrTypeMismatch, p.Type)
	}
	if r.err != nil {
		return "", r.err
	}
	if p.json == nil {
		return "", errUnparsed
	}
	return wrapNotFound(p.json.Get(r.path))
}

// -------------------- XML_PATH --------------------

type XMLPathRule struct {
	name string
	path string
}

func (r *XMLPathRule) ResultName() string { return r.name }
func (r *XMLPathRule) Kind() definition.RuleKind { return definition.KindXMLPath }
func (r *XMLPathRule) Path() string { return r.path }

func (r *XMLPathRule) Evaluate(p *Payload) (string, error) {
	if p.Type != definition.ResponseXML {
		return "", fmt.Errorf("%w: XML path on a %s response", ErrTypeMismatch, p.Type)
	}
	if p.xml == nil {
		return "", errUnparsed
	}
	return wrapNotFound(p.xml.Get(r.path))
}

// -------------------- REGEX --------------------

// RegexRule works on the raw response text regardless of the response type.
type RegexRule struct {
	name string
	path string
	re   *query.Regex
	err  error
}

func (r *RegexRule) ResultName() string { return r.name }
func (r *RegexRule) Kind() definition.RuleKind { return definition.KindRegex }
func (r *RegexRule) Path() string { return r.path }

func (r *RegexRule) Evaluate(p *Payload) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return wrapNotFound(r.re.Find(p.Text))
}

// -------------------- invalid --------------------

type invalidRule struct {
	cfg definition.ExtractionRule
}

func (r *invalidRule) ResultName() string { return r.cfg.ResultName }
func (r *invalidRule) Kind() definition.RuleKind { return r.cfg.Kind }
func (r *invalidRule) Path() string { return r.cfg.Path }

func (r *invalidRule) Evaluate(p *Payload) (string, error) {
	return "", fmt.Errorf("%w: unsupported rule kind '%s'", query.ErrInvalidPath, r.cfg.Kind)
}

func wrapNotFound(value string, err error) (string, error) {
	if errors.Is(err, query.ErrNotFound) {
		return "", fmt.Errorf("%w: %w", ErrNotMatched, err)
	}
	return value, err
}
