package definition

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func imageDefinition() *Definition {
	return &Definition{
		Name:        "example",
		Method:      MethodPOST,
		URLTemplate: "https://x/upload?name={filename}",
		HeaderTemplates: []NamedTemplate{
			{Name: "Authorization", Template: "Bearer {token}"},
		},
		BodyTemplates: []NamedTemplate{
			{Name: "title", Template: "{input}"},
		},
		FileFormFieldName: "file",
		ResponseType:      ResponseJSON,
		ExtractionRules: []ExtractionRule{
			{ResultName: ResultURL, Path: "$.link", Kind: KindJSONPath},
			{ResultName: ResultDeletionURL, Path: `regex:"deletehash":"(\w+)":1`, Kind: KindRegex},
		},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		def  *Definition
	}{
		{
			name: "file upload definition",
			def:  imageDefinition(),
		},
		{
			name: "raw json body",
			def: &Definition{
				Method:        MethodPOST,
				URLTemplate:   "https://api.example.com/snippets",
				BodyTemplates: []NamedTemplate{{Template: `{"files":{"{filename}":{"content":"{input}"}}}`}},
				ResponseType:  ResponseJSON,
				ExtractionRules: []ExtractionRule{
					{ResultName: ResultURL, Path: "links.html.href", Kind: KindJSONPath},
				},
			},
		},
		{
			name: "minimal redirect definition with empty collections",
			def: &Definition{
				Method:          MethodGET,
				URLTemplate:     "https://x/{input}",
				HeaderTemplates: []NamedTemplate{},
				ResponseType:    ResponseRedirectionHeader,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Save(tt.def)
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := Load(data)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(tt.def, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			again, err := Save(got)
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if string(again) != string(data) {
				t.Errorf("second save differs:\n%s\n%s", data, again)
			}
		})
	}
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *Definition)
		wantField string
	}{
		{
			name:   "valid",
			mutate: func(d *Definition) {},
		},
		{
			name:      "file upload with GET",
			mutate:    func(d *Definition) { d.Method = MethodGET },
			wantField: "method",
		},
		{
			name:      "file upload with DELETE",
			mutate:    func(d *Definition) { d.Method = MethodDELETE },
			wantField: "method",
		},
		{
			name:      "file upload with PATCH",
			mutate:    func(d *Definition) { d.Method = MethodPATCH },
			wantField: "method",
		},
		{
			name:   "file upload with PUT",
			mutate: func(d *Definition) { d.Method = MethodPUT },
		},
		{
			name: "GET without file",
			mutate: func(d *Definition) {
				d.Method = MethodGET
				d.FileFormFieldName = ""
			},
		},
		{
			name:      "unknown method",
			mutate:    func(d *Definition) { d.Method = "FETCH" },
			wantField: "method",
		},
		{
			name:      "empty url",
			mutate:    func(d *Definition) { d.URLTemplate = " " },
			wantField: "urlTemplate",
		},
		{
			name:      "unknown response type",
			mutate:    func(d *Definition) { d.ResponseType = "HTML" },
			wantField: "responseType",
		},
		{
			name:      "unknown rule kind",
			mutate:    func(d *Definition) { d.ExtractionRules[0].Kind = "CSS" },
			wantField: "extractionRules[0].kind",
		},
		{
			name:      "rule without result name",
			mutate:    func(d *Definition) { d.ExtractionRules[1].ResultName = "" },
			wantField: "extractionRules[1].resultName",
		},
		{
			name:      "raw body mixed with named fields",
			mutate:    func(d *Definition) { d.BodyTemplates = append(d.BodyTemplates, NamedTemplate{Template: "{}"}) },
			wantField: "bodyTemplates",
		},
		{
			name: "raw body with file payload",
			mutate: func(d *Definition) {
				d.BodyTemplates = []NamedTemplate{{Template: "{}"}}
			},
			wantField: "bodyTemplates",
		},
		{
			name:      "header without name",
			mutate:    func(d *Definition) { d.HeaderTemplates[0].Name = "" },
			wantField: "headerTemplates",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := imageDefinition()
			tt.mutate(d)
			err := d.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigurationError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %s, want %s", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "nope"},
		{name: "unknown field", data: `{"method":"POST","urlTemplate":"https://x","responseType":"JSON","bogus":1}`},
		{name: "file upload with GET", data: `{"method":"GET","urlTemplate":"https://x","fileFormFieldName":"f","responseType":"JSON"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.data)); err == nil {
				t.Errorf("Load() error = nil, want error")
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	data := []byte(`
name: "imgur"
method: "POST"
urlTemplate: "https://api.imgur.com/3/image"
headerTemplates:
- name: "Authorization"
  template: "Client-ID {clientId}"
fileFormFieldName: "image"
responseType: "JSON"
extractionRules:
- resultName: "url"
  path: "data.link"
  kind: "JSON_PATH"
`)
	got, err := LoadYAML(data)
	if err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}
	want := &Definition{
		Name:              "imgur",
		Method:            MethodPOST,
		URLTemplate:       "https://api.imgur.com/3/image",
		HeaderTemplates:   []NamedTemplate{{Name: "Authorization", Template: "Client-ID {clientId}"}},
		FileFormFieldName: "image",
		ResponseType:      ResponseJSON,
		ExtractionRules:   []ExtractionRule{{ResultName: ResultURL, Path: "data.link", Kind: KindJSONPath}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadYAML() mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveFileLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "definition.json")
	want := imageDefinition()

	if err := SaveFile(path, want); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoadFile() mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile() error = %v, want os.ErrNotExist", err)
	}
}
