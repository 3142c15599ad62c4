package query

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// XMLDocument is a parsed XML response.
type XMLDocument struct {
	root *xmlquery.Node
}

// ParseXML parses data once so that XPath expressions can be evaluated against it repeatedly.
func ParseXML(data []byte) (*XMLDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidXML)
	}
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidXML, err)
	}
	if xmlquery.FindOne(root, "/*") == nil {
		return nil, fmt.Errorf("%w: no root element", ErrInvalidXML)
	}
	return &XMLDocument{root: root}, nil
}

// Get evaluates an XPath expression and returns the inner text of the first selected node.
func (d *XMLDocument) Get(expr string) (string, error) {
	node, err := xmlquery.Query(d.root, strings.TrimSpace(expr))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, err)
	}
	if node == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, expr)
	}
	return strings.TrimSpace(node.InnerText()), nil
}
