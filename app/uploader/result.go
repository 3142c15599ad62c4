package uploader

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/jo-hoe/go-custom-uploader/app/definition"
	"github.com/jo-hoe/go-custom-uploader/app/extractor"
)

// State is the stage an upload is in or ended in.
type State string

const (
	StateBuilding State = "BUILDING"
	StateSending  State = "SENDING"
	StateParsing  State = "PARSING"
	StateDone     State = "DONE"
	StateFailed   State = "FAILED"
)

// Result is what callers of an upload get back, whether it succeeded or not.
type Result struct {
	ID           string            `json:"id"`
	Definition   string            `json:"definition,omitempty"`
	// Input is the file name, or a shortened copy of the text for text uploads.
	Input        string            `json:"input,omitempty"`
	State        State             `json:"state"`
	PrimaryURL   string            `json:"url,omitempty"`
	ThumbnailURL string            `json:"thumbnailUrl,omitempty"`
	DeletionURL  string            `json:"deletionUrl,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
	Errors       []string          `json:"errors,omitempty"`
	StatusCode   int               `json:"statusCode,omitempty"`

	// Extraction holds every extracted value and failure when a response was received.
	Extraction *extractor.Result `json:"-"`
}

// HasPrimaryURL reports whether the upload produced its primary url.
func (r *Result) HasPrimaryURL() bool {
	return r.PrimaryURL != ""
}

func (r *Result) fail(err error) {
	r.State = StateFailed
	r.Errors = append(r.Errors, err.Error())
}

// applyExtraction copies the extracted values onto the result surface.
func (r *Result) applyExtraction(ext *extractor.Result) {
	r.Extraction = ext
	for name, value := range ext.Values {
		switch name {
		case definition.ResultURL:
			r.PrimaryURL = value
		case definition.ResultThumbnailURL:
			r.ThumbnailURL = value
		case definition.ResultDeletionURL:
			r.DeletionURL = value
		default:
			r.Extra[name] = value
		}
	}
	r.Errors = append(r.Errors, lo.Map(ext.Unresolved(), func(f extractor.Failure, _ int) string {
		return f.Error()
	})...)
}

// OverallFailure is returned when a response was received but no primary url could be extracted.
type OverallFailure struct {
	StatusCode  int
	Failures    []extractor.Failure
	RawResponse string
}

func (e *OverallFailure) Error() string {
	msg := fmt.Sprintf("no '%s' could be extracted from the response (status %d)", definition.ResultURL, e.StatusCode)
	if len(e.Failures) == 0 {
		return msg
	}
	reasons := lo.Map(e.Failures, func(f extractor.Failure, _ int) string { return f.Error() })
	return fmt.Sprintf("%s: %s", msg, strings.Join(reasons, "; "))
}

func (e *OverallFailure) Unwrap() []error {
	return lo.Map(e.Failures, func(f extractor.Failure, _ int) error { return f })
}
