// Package output renders upload results for the command line.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/jo-hoe/go-custom-uploader/app/uploader"
)

// Formatter defines how upload results are written.
type Formatter interface {
	// Write renders the results to w.
	Write(w io.Writer, results []*uploader.Result) error
	// Name returns the identifier of the format (e.g., "text", "json").
	Name() string
}

// textFormatter prints one block per upload.
type textFormatter struct{}

func (f *textFormatter) Write(w io.Writer, results []*uploader.Result) error {
	var b strings.Builder
	for _, r := range results {
		label := r.Input
		if label == "" {
			label = r.ID
		}
		fmt.Fprintf(&b, "%s: %s\n", label, r.State)
		if r.PrimaryURL != "" {
			fmt.Fprintf(&b, "  url: %s\n", r.PrimaryURL)
		}
		if r.ThumbnailURL != "" {
			fmt.Fprintf(&b, "  thumbnail: %s\n", r.ThumbnailURL)
		}
		if r.DeletionURL != "" {
			fmt.Fprintf(&b, "  deletion: %s\n", r.DeletionURL)
		}
		names := lo.Keys(r.Extra)
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %s\n", name, r.Extra[name])
		}
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  error: %s\n", e)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
func (f *textFormatter) Name() string { return "text" }

// jsonFormatter writes the results as an indented JSON array.
type jsonFormatter struct{}

func (f *jsonFormatter) Write(w io.Writer, results []*uploader.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []*uploader.Result{}
	}
	return enc.Encode(results)
}
func (f *jsonFormatter) Name() string { return "json" }

// NewFormatter creates a Formatter from the provided name.
// Supported: "text" (default), "json".
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return &textFormatter{}, nil
	case "json":
		return &jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", name)
	}
}
