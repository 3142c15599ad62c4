package extractor

import (
	"errors"

	"github.com/jo-hoe/go-custom-uploader/app/definition"
	"github.com/jo-hoe/go-custom-uploader/app/query"
)

// ErrNotMatched indicates that a rule did not select a value from the response.
// Callers can use errors.Is(err, ErrNotMatched) to distinguish non-match from faulty rules.
var ErrNotMatched = errors.New("rule not matched")

// ErrTypeMismatch indicates a rule kind that cannot be applied to the declared response type.
var ErrTypeMismatch = errors.New("type mismatch")

// errUnparsed tells the extractor that the response could not be parsed for this rule.
// The parse error has been reported once already.
var errUnparsed = errors.New("response not parsed")

// Payload is a response prepared for rule evaluation. Each representation is parsed at most once.
type Payload struct {
	Type definition.ResponseType
	Text string

	json *query.JSONDocument
	xml  *query.XMLDocument
}

// Rule is a compiled extraction rule. Rules are immutable and safe for concurrent use.
type Rule interface {
	// ResultName returns the name the extracted value is stored under.
	ResultName() string
	// Kind returns the rule kind (JSON_PATH, XML_PATH or REGEX).
	Kind() definition.RuleKind
	// Path returns the configured expression.
	Path() string
	// Evaluate selects the value from the payload.
	// Returns an error wrapping ErrNotMatched when the rule does not select anything.
	Evaluate(p *Payload) (string, error)
}
