package request

import (
	"github.com/jo-hoe/go-custom-uploader/app/template"
)

// Field is a compiled header or body entry of a definition. Fields are immutable and can be applied concurrently.
type Field interface {
	// Name returns the configured field name.
	Name() string
	// Type returns the field type ("headerValue" | "formValue" | "rawBody").
	Type() string
	// Apply renders the field with ctx and adds it to the request description.
	Apply(ctx *template.Context, d *Description)
}

// -------------------- headerValue --------------------

type HeaderField struct {
	name  string
	value template.Template
}

func (f *HeaderField) Name() string { return f.name }
func (f *HeaderField) Type() string { return "headerValue" }

// Apply sets the header. A later header of the same name replaces an earlier one.
func (f *HeaderField) Apply(ctx *template.Context, d *Description) {
	d.Headers.Set(f.name, f.value.Render(ctx))
}

// -------------------- formValue --------------------

type FormValueField struct {
	name  string
	value template.Template
}

func (f *FormValueField) Name() string { return f.name }
func (f *FormValueField) Type() string { return "formValue" }

func (f *FormValueField) Apply(ctx *template.Context, d *Description) {
	d.Fields = append(d.Fields, FormField{Name: f.name, Value: f.value.Render(ctx)})
}

// -------------------- rawBody --------------------

type RawBodyField struct {
	value template.Template
}

func (f *RawBodyField) Name() string { return "" }
func (f *RawBodyField) Type() string { return "rawBody" }

func (f *RawBodyField) Apply(ctx *template.Context, d *Description) {
	d.RawBody = f.value.Render(ctx)
}
