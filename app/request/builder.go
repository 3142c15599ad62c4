// Package request turns a definition and a runtime context into a fully rendered request description.
package request

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/jo-hoe/go-custom-uploader/app/definition"
	"github.com/jo-hoe/go-custom-uploader/app/template"
)

const (
	defaultRawContentType = "application/json"
	defaultTextFileName   = "text.txt"
)

// queryMethods send their body templates as URL query arguments.
var queryMethods = []definition.Method{definition.MethodGET, definition.MethodDELETE}

// Builder holds the compiled templates of one definition.
// It is immutable after NewBuilder and can build requests from many goroutines.
type Builder struct {
	def    *definition.Definition
	url    template.Template
	fields []Field
}

// NewBuilder validates def and compiles its templates.
func NewBuilder(def *definition.Definition) (*Builder, error) {
	if def == nil {
		return nil, definition.NewConfigurationError("definition", "is nil")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &Builder{
		def:    def,
		url:    template.Compile(def.URLTemplate),
		fields: NewFields(def),
	}, nil
}

// Build validates def and renders a request for ctx.
func Build(def *definition.Definition, ctx *template.Context) (*Description, error) {
	b, err := NewBuilder(def)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx)
}

// Build renders the request for ctx. It performs no I/O; the file content is referenced, not read.
func (b *Builder) Build(ctx *template.Context) (*Description, error) {
	if ctx == nil {
		ctx = &template.Context{}
	}
	d := NewDescription(string(b.def.Method))
	d.KeepRedirect = b.def.ResponseType == definition.ResponseRedirectionHeader

	rawURL := strings.TrimSpace(b.url.Render(ctx))
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}
	d.URL = rawURL

	for _, f := range b.fields {
		f.Apply(ctx, d)
	}

	switch {
	case b.def.HasFile():
		d.BodyKind = BodyMultipart
		d.File = newFilePayload(b.def.FileFormFieldName, ctx)
	case lo.ContainsBy(b.fields, func(f Field) bool { return f.Type() == "rawBody" }):
		d.BodyKind = BodyRaw
		if d.Headers.Get("Content-Type") == "" {
			d.Headers.Set("Content-Type", defaultRawContentType)
		}
	case lo.Contains(queryMethods, b.def.Method):
		d.URL = appendQuery(d.URL, d.Fields)
		d.Fields = d.Fields[:0]
	case len(d.Fields) > 0:
		d.BodyKind = BodyForm
	}
	return d, nil
}

func newFilePayload(fieldName string, ctx *template.Context) *FilePayload {
	payload := &FilePayload{
		FieldName: fieldName,
		FileName:  ctx.FileName,
		Content:   ctx.File,
	}
	if ctx.IsText() {
		payload.Content = strings.NewReader(ctx.InputText)
		if payload.FileName == "" {
			payload.FileName = defaultTextFileName
		}
	}
	return payload
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return definition.NewConfigurationError("urlTemplate", fmt.Sprintf("renders to an invalid url '%s': %s", rawURL, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return definition.NewConfigurationError("urlTemplate", fmt.Sprintf("renders to '%s' which is not an http(s) url", rawURL))
	}
	if u.Host == "" {
		return definition.NewConfigurationError("urlTemplate", fmt.Sprintf("renders to '%s' which has no host", rawURL))
	}
	return nil
}

// appendQuery adds fields to the query of rawURL keeping their declaration order.
func appendQuery(rawURL string, fields []FormField) string {
	if len(fields) == 0 {
		return rawURL
	}
	pairs := lo.Map(fields, func(f FormField, _ int) string {
		return url.QueryEscape(f.Name) + "=" + url.QueryEscape(f.Value)
	})
	encoded := strings.Join(pairs, "&")

	fragment := ""
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL, fragment = rawURL[:i], rawURL[i:]
	}
	switch {
	case !strings.Contains(rawURL, "?"):
		rawURL += "?" + encoded
	case strings.HasSuffix(rawURL, "?"), strings.HasSuffix(rawURL, "&"):
		rawURL += encoded
	default:
		rawURL += "&" + encoded
	}
	return rawURL + fragment
}
