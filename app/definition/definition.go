package definition

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Method is the HTTP method a definition sends its request with.
type Method string

const (
	MethodGET    Method = "GET"
	MethodPOST   Method = "POST"
	MethodPUT    Method = "PUT"
	MethodPATCH  Method = "PATCH"
	MethodDELETE Method = "DELETE"
)

var methods = []Method{MethodGET, MethodPOST, MethodPUT, MethodPATCH, MethodDELETE}

// fileMethods are the only methods allowed to carry a file payload.
var fileMethods = []Method{MethodPOST, MethodPUT}

// ResponseType declares how the response of an upload is interpreted.
type ResponseType string

const (
	ResponseText              ResponseType = "TEXT"
	ResponseJSON              ResponseType = "JSON"
	ResponseXML               ResponseType = "XML"
	ResponseRedirectionHeader ResponseType = "REDIRECTION_HEADER"
)

var responseTypes = []ResponseType{ResponseText, ResponseJSON, ResponseXML, ResponseRedirectionHeader}

// RuleKind selects the evaluator of an extraction rule.
type RuleKind string

const (
	KindJSONPath RuleKind = "JSON_PATH"
	KindXMLPath  RuleKind = "XML_PATH"
	KindRegex    RuleKind = "REGEX"
)

var ruleKinds = []RuleKind{KindJSONPath, KindXMLPath, KindRegex}

// Well known result names. Every other result name ends up in the extra values of an upload result.
const (
	ResultURL          = "url"
	ResultThumbnailURL = "thumbnail_url"
	ResultDeletionURL  = "deletion_url"
)

// NamedTemplate is one entry of an ordered name -> template mapping.
// A body template with an empty name is the raw body of the request.
type NamedTemplate struct {
	Name     string `json:"name" yaml:"name"`
	Template string `json:"template" yaml:"template"`
}

// ExtractionRule describes how one named value is pulled out of a response.
type ExtractionRule struct {
	ResultName string   `json:"resultName" yaml:"resultName"`
	Path       string   `json:"path" yaml:"path"`
	Kind       RuleKind `json:"kind" yaml:"kind"`
}

// Definition is the user authored description of one upload endpoint.
// A loaded Definition is treated as immutable and may be shared between goroutines.
type Definition struct {
	Name              string           `json:"name,omitempty" yaml:"name,omitempty"`
	Method            Method           `json:"method" yaml:"method"`
	URLTemplate       string           `json:"urlTemplate" yaml:"urlTemplate"`
	HeaderTemplates   []NamedTemplate  `json:"headerTemplates,omitempty" yaml:"headerTemplates,omitempty"`
	BodyTemplates     []NamedTemplate  `json:"bodyTemplates,omitempty" yaml:"bodyTemplates,omitempty"`
	FileFormFieldName string           `json:"fileFormFieldName,omitempty" yaml:"fileFormFieldName,omitempty"`
	ResponseType      ResponseType     `json:"responseType" yaml:"responseType"`
	ExtractionRules   []ExtractionRule `json:"extractionRules,omitempty" yaml:"extractionRules,omitempty"`
}

// HasFile reports whether requests of this definition carry a file payload.
func (d *Definition) HasFile() bool {
	return strings.TrimSpace(d.FileFormFieldName) != ""
}

// RawBody returns the raw body template if the body consists of a single unnamed entry.
func (d *Definition) RawBody() (string, bool) {
	if len(d.BodyTemplates) == 1 && d.BodyTemplates[0].Name == "" {
		return d.BodyTemplates[0].Template, true
	}
	return "", false
}

// Validate checks a definition and returns a *ConfigurationError on violation.
func (d *Definition) Validate() error {
	if !lo.Contains(methods, d.Method) {
		return NewConfigurationError("method", fmt.Sprintf("unsupported method '%s' (supported: GET, POST, PUT, PATCH, DELETE)", d.Method))
	}
	if d.HasFile() && !lo.Contains(fileMethods, d.Method) {
		return NewConfigurationError("method", fmt.Sprintf("method must be POST or PUT when fileFormFieldName is set (got %s)", d.Method))
	}
	if strings.TrimSpace(d.URLTemplate) == "" {
		return NewConfigurationError("urlTemplate", "is empty")
	}
	if !lo.Contains(responseTypes, d.ResponseType) {
		return NewConfigurationError("responseType", fmt.Sprintf("unsupported response type '%s' (supported: TEXT, JSON, XML, REDIRECTION_HEADER)", d.ResponseType))
	}
	for _, h := range d.HeaderTemplates {
		if strings.TrimSpace(h.Name) == "" {
			return NewConfigurationError("headerTemplates", "header name is empty")
		}
	}
	if _, raw := d.RawBody(); !raw {
		for _, b := range d.BodyTemplates {
			if b.Name == "" {
				return NewConfigurationError("bodyTemplates", "an unnamed raw body must be the only body entry")
			}
		}
	}
	if _, raw := d.RawBody(); raw && d.HasFile() {
		return NewConfigurationError("bodyTemplates", "a raw body cannot be combined with a file payload")
	}
	for i, r := range d.ExtractionRules {
		if strings.TrimSpace(r.ResultName) == "" {
			return NewConfigurationError(fmt.Sprintf("extractionRules[%d].resultName", i), "is empty")
		}
		if !lo.Contains(ruleKinds, r.Kind) {
			return NewConfigurationError(fmt.Sprintf("extractionRules[%d].kind", i), fmt.Sprintf("unsupported kind '%s' (supported: JSON_PATH, XML_PATH, REGEX)", r.Kind))
		}
	}
	return nil
}
