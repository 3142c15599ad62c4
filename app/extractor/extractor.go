// Package extractor pulls named values out of upload responses.
//
// Every rule is evaluated on its own: a rule that does not match, does not fit
// the response type or fails internally is recorded as a Failure and never
// stops the remaining rules.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/jo-hoe/go-custom-uploader/app/definition"
	"github.com/jo-hoe/go-custom-uploader/app/query"
)

// Failure reasons.
const (
	ReasonInvalidJSON     = "invalid JSON"
	ReasonInvalidXML      = "invalid XML"
	ReasonTypeMismatch    = "type mismatch"
	ReasonNotMatched      = "no match"
	ReasonInvalidRule     = "invalid rule"
	ReasonInternal        = "internal error"
	ReasonUndecodable     = "undecodable content"
	ReasonMissingLocation = "missing Location header"
	ReasonTruncated       = "truncated response"
)

// Failure describes a rule, or the whole response, that could not produce a value.
// Failures not tied to a rule have an empty ResultName.
type Failure struct {
	ResultName string
	Kind       definition.RuleKind
	Path       string
	Reason     string
	Err        error
}

func (f Failure) Error() string {
	msg := f.Reason
	if f.ResultName != "" {
		msg = fmt.Sprintf("rule '%s' (%s %s): %s", f.ResultName, f.Kind, f.Path, f.Reason)
	}
	if f.Err != nil {
		msg = fmt.Sprintf("%s - error: %s", msg, f.Err)
	}
	return msg
}

func (f Failure) Unwrap() error { return f.Err }

// Result holds the extracted values, the failures in the order they occurred and the response text.
type Result struct {
	Values      map[string]string
	Failures    []Failure
	RawResponse string
}

// Get returns an extracted value. Absent names mean no rule matched.
func (r *Result) Get(name string) (string, bool) {
	v, ok := r.Values[name]
	return v, ok
}

// Unresolved returns the failures of result names that have no value, plus failures not tied to a rule.
func (r *Result) Unresolved() []Failure {
	return lo.Filter(r.Failures, func(f Failure, _ int) bool {
		if f.ResultName == "" {
			return true
		}
		_, ok := r.Values[f.ResultName]
		return !ok
	})
}

// Extractor evaluates the compiled rules of one definition. It is immutable and safe for concurrent use.
type Extractor struct {
	responseType definition.ResponseType
	rules        []Rule
}

// New compiles the extraction rules of def.
func New(def *definition.Definition) *Extractor {
	return &Extractor{
		responseType: def.ResponseType,
		rules:        NewRules(def.ExtractionRules),
	}
}

// Extract is a shorthand for New(def).Extract(raw, contentEncoding).
func Extract(def *definition.Definition, raw []byte, contentEncoding string) *Result {
	return New(def).Extract(raw, contentEncoding)
}

// Extract applies the rules to a response. For REDIRECTION_HEADER definitions raw is the Location header value.
// The first rule that yields a value for a result name wins; later rules for that name are skipped.
func (e *Extractor) Extract(raw []byte, contentEncoding string) *Result {
	result := &Result{Values: make(map[string]string)}

	decoded, err := Decode(raw, contentEncoding)
	if err != nil {
		result.Failures = append(result.Failures, Failure{Reason: ReasonUndecodable, Err: err})
		decoded = raw
	}
	result.RawResponse = string(decoded)

	payload := &Payload{Type: e.responseType, Text: result.RawResponse}
	switch e.responseType {
	case definition.ResponseJSON:
		doc, err := query.ParseJSON(decoded)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Reason: ReasonInvalidJSON, Err: err})
		}
		payload.json = doc
	case definition.ResponseXML:
		doc, err := query.ParseXML(decoded)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Reason: ReasonInvalidXML, Err: err})
		}
		payload.xml = doc
	case definition.ResponseRedirectionHeader:
		if payload.Text == "" {
			result.Failures = append(result.Failures, Failure{ResultName: definition.ResultURL, Reason: ReasonMissingLocation})
		} else {
			result.Values[definition.ResultURL] = payload.Text
		}
	}

	for _, rule := range e.rules {
		if _, done := result.Values[rule.ResultName()]; done {
			continue
		}
		value, err := evaluate(rule, payload)
		switch {
		case errors.Is(err, errUnparsed):
			continue
		case err != nil:
			result.Failures = append(result.Failures, Failure{
				ResultName: rule.ResultName(),
				Kind:       rule.Kind(),
				Path:       rule.Path(),
				Reason:     reasonOf(err),
				Err:        err,
			})
		default:
			result.Values[rule.ResultName()] = value
		}
	}
	return result
}

// evaluate runs one rule and turns a panic into an error.
func evaluate(rule Rule, p *Payload) (value string, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("extraction rule panicked", "result", rule.ResultName(), "kind", rule.Kind(), "panic", r)
			value, err = "", &panicError{value: r}
		}
	}()
	return rule.Evaluate(p)
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func reasonOf(err error) string {
	var pe *panicError
	switch {
	case errors.As(err, &pe):
		return ReasonInternal
	case errors.Is(err, ErrTypeMismatch):
		return ReasonTypeMismatch
	case errors.Is(err, ErrNotMatched):
		return ReasonNotMatched
	case errors.Is(err, query.ErrInvalidPath):
		return ReasonInvalidRule
	default:
		return ReasonInternal
	}
}
