package request

import (
	"github.com/jo-hoe/go-custom-uploader/app/definition"
	"github.com/jo-hoe/go-custom-uploader/app/template"
)

// NewFields compiles the header and body templates of a definition in declaration order.
func NewFields(def *definition.Definition) []Field {
	fields := make([]Field, 0, len(def.HeaderTemplates)+len(def.BodyTemplates))
	for _, h := range def.HeaderTemplates {
		fields = append(fields, &HeaderField{
			name:  h.Name,
			value: template.Compile(h.Template),
		})
	}
	if raw, ok := def.RawBody(); ok {
		return append(fields, &RawBodyField{value: template.Compile(raw)})
	}
	for _, b := range def.BodyTemplates {
		fields = append(fields, &FormValueField{
			name:  b.Name,
			value: template.Compile(b.Template),
		})
	}
	return fields
}
