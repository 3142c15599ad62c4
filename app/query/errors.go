// Package query evaluates JSON paths, XPath expressions and regular expressions against response payloads.
package query

import "errors"

var (
	// ErrNotFound indicates that an expression is valid but selects nothing.
	ErrNotFound = errors.New("no value found")
	// ErrInvalidPath indicates an expression that cannot be parsed.
	ErrInvalidPath = errors.New("invalid path")
	// ErrInvalidJSON indicates a payload that is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrInvalidXML indicates a payload that is not valid XML.
	ErrInvalidXML = errors.New("invalid XML")
)
