package template

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func fileContext() *Context {
	return &Context{
		FileName: "cat.png",
		File:     strings.NewReader("binary"),
		PriorResults: map[string]string{
			"token":        "abc123",
			RawResponseKey: `{"upload":{"id":"slot-9","url":"https://x/slots/9"}}`,
		},
	}
}

func TestCompile_Segments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []SegmentKind
	}{
		{name: "empty", input: "", want: nil},
		{name: "literal only", input: "https://x/upload", want: []SegmentKind{SegmentLiteral}},
		{name: "placeholder only", input: "{input}", want: []SegmentKind{SegmentPlaceholder}},
		{name: "mixed", input: "a{input}b{filename}", want: []SegmentKind{SegmentLiteral, SegmentPlaceholder, SegmentLiteral, SegmentPlaceholder}},
		{name: "unterminated", input: "a{b", want: []SegmentKind{SegmentLiteral}},
		{name: "json text stays literal", input: `{"a":1}`, want: []SegmentKind{SegmentLiteral}},
		{name: "empty braces", input: "{}", want: []SegmentKind{SegmentLiteral}},
		{name: "placeholder inside json", input: `{"title":"{input}"}`, want: []SegmentKind{SegmentLiteral, SegmentPlaceholder, SegmentLiteral}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compile(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Compile() = %d segments (%+v), want %d", len(got), got, len(tt.want))
			}
			for i, s := range got {
				if s.Kind != tt.want[i] {
					t.Errorf("segment %d kind = %v, want %v", i, s.Kind, tt.want[i])
				}
			}
		})
	}
}

func TestTemplate_Render(t *testing.T) {
	textCtx := &Context{
		FileName:  "note.txt",
		InputText: "hello world",
	}
	tests := []struct {
		name  string
		input string
		ctx   *Context
		want  string
	}{
		{name: "literal", input: "https://x/upload", ctx: fileContext(), want: "https://x/upload"},
		{name: "filename", input: "https://x/{filename}", ctx: fileContext(), want: "https://x/cat.png"},
		{name: "input of file upload is file name", input: "{input}", ctx: fileContext(), want: "cat.png"},
		{name: "input of text upload is text", input: "{input}", ctx: textCtx, want: "hello world"},
		{name: "prior result", input: "Bearer {token}", ctx: fileContext(), want: "Bearer abc123"},
		{name: "json of previous response", input: "{json:$.upload.url}/put", ctx: fileContext(), want: "https://x/slots/9/put"},
		{name: "regex of previous response", input: `{regex:"id":"([^"]+)":1}`, ctx: fileContext(), want: "slot-9"},
		{name: "regex with escaped braces", input: `{regex:slot-(\d\{1\}):1}`, ctx: fileContext(), want: "9"},
		{name: "unknown family renders empty", input: "a{unknown:x}b", ctx: fileContext(), want: "ab"},
		{name: "unterminated delimiter is literal", input: "a{b", ctx: fileContext(), want: "a{b"},
		{name: "unknown bare name is literal", input: "a{nothere}b", ctx: fileContext(), want: "a{nothere}b"},
		{name: "json body", input: `{"title":"{input}","n":{"x":1}}`, ctx: textCtx, want: `{"title":"hello world","n":{"x":1}}`},
		{name: "json path missing renders empty", input: "[{json:upload.none}]", ctx: fileContext(), want: "[]"},
		{name: "json without previous response", input: "[{json:a}]", ctx: textCtx, want: "[]"},
		{name: "xml of previous response", input: "{xml://id}", ctx: &Context{PriorResults: map[string]string{RawResponseKey: "<r><id>5</id></r>"}}, want: "5"},
		{name: "nil context", input: "a{input}{json:x}b", ctx: nil, want: "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compile(tt.input).Render(tt.ctx); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_NoRecursiveExpansion(t *testing.T) {
	ctx := &Context{
		PriorResults: map[string]string{
			"self":  "{self}",
			"other": "{input}",
		},
	}
	if got := Expand("{self}-{other}", ctx); got != "{self}-{input}" {
		t.Errorf("Expand() = %q, want %q", got, "{self}-{input}")
	}
}

func TestRender_Deterministic(t *testing.T) {
	compiled := Compile("{filename}:{token}:{json:upload.id}")
	ctx := fileContext()
	first := compiled.Render(ctx)
	second := compiled.Render(ctx)
	if first != second {
		t.Errorf("Render() not deterministic: %q != %q", first, second)
	}
}

func TestRender_ConcurrentUse(t *testing.T) {
	compiled := Compile("https://x/{filename}?t={token}")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := compiled.Render(fileContext()); got != "https://x/cat.png?t=abc123" {
				t.Errorf("Render() = %q", got)
			}
		}()
	}
	wg.Wait()
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantValue string
		want      Resolution
	}{
		{name: "input", token: "input", wantValue: "cat.png", want: Resolved},
		{name: "prior", token: "token", wantValue: "abc123", want: Resolved},
		{name: "unknown family", token: "unknown:x", want: Missing},
		{name: "bad regex", token: "regex:(:1", want: Missing},
		{name: "literal", token: `"a":1`, want: Literal},
		{name: "unknown name", token: "nothere", want: Literal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, got := Resolve(tt.token, fileContext())
			if got != tt.want || value != tt.wantValue {
				t.Errorf("Resolve() = (%q, %v), want (%q, %v)", value, got, tt.wantValue, tt.want)
			}
		})
	}
}

func TestResolve_LogsMissingPlaceholder(t *testing.T) {
	var logBuffer bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(previous)

	Expand("{json:missing}", fileContext())

	if !strings.Contains(logBuffer.String(), "placeholder not resolved") {
		t.Errorf("expected log about unresolved placeholder, log was '%s'", logBuffer.String())
	}
}
