// Package uploader runs uploads described by a definition: build the request,
// send it through a transport, extract the results.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/jo-hoe/go-custom-uploader/app/definition"
	"github.com/jo-hoe/go-custom-uploader/app/extractor"
	"github.com/jo-hoe/go-custom-uploader/app/request"
	"github.com/jo-hoe/go-custom-uploader/app/template"
	"github.com/jo-hoe/go-custom-uploader/app/transport"
)

const (
	logPrefixLength  = 200
	inputLabelLength = 40
)

// Uploader holds the compiled form of one definition and the transport it sends through.
// It is immutable and can run any number of uploads concurrently, each with its own template.Context.
type Uploader struct {
	def       *definition.Definition
	builder   *request.Builder
	extractor *extractor.Extractor
	transport transport.Transport
}

// New validates and compiles def. The error is a *definition.ConfigurationError.
func New(def *definition.Definition, t transport.Transport) (*Uploader, error) {
	builder, err := request.NewBuilder(def)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("transport is nil")
	}
	return &Uploader{
		def:       def,
		builder:   builder,
		extractor: extractor.New(def),
		transport: t,
	}, nil
}

// Upload runs one upload. The returned Result is never nil; on failure it is in StateFailed
// and err is a *definition.ConfigurationError, a *transport.TransportError or an *OverallFailure.
func (u *Uploader) Upload(ctx context.Context, tctx *template.Context) (*Result, error) {
	return u.run(ctx, tctx, true)
}

func (u *Uploader) run(ctx context.Context, tctx *template.Context, requirePrimary bool) (res *Result, err error) {
	if tctx == nil {
		tctx = &template.Context{}
	}
	res = &Result{
		ID:         uuid.NewString(),
		Definition: u.def.Name,
		Input:      inputLabel(tctx),
		State:      StateBuilding,
		Extra:      make(map[string]string),
	}
	log := slog.With("upload_id", res.ID, "definition", u.def.Name)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error while %s: %v", res.State, r)
			log.Error("upload panicked", "state", res.State, "panic", r)
			res.fail(err)
		}
	}()

	log.Debug("building request")
	desc, err := u.builder.Build(tctx)
	if err != nil {
		log.Warn("invalid definition; nothing was sent", "error", err)
		res.fail(err)
		return res, err
	}

	res.State = StateSending
	log.Debug("sending request", "method", desc.Method, "url", desc.URL)
	resp, err := u.transport.Send(ctx, desc)
	if err != nil {
		var terr *transport.TransportError
		if !errors.As(err, &terr) {
			err = &transport.TransportError{Method: desc.Method, URL: desc.URL, Err: err}
		}
		log.Error("request failed", "method", desc.Method, "url", desc.URL, "timeout", transport.IsTimeout(err), "error", err)
		res.fail(err)
		return res, err
	}

	res.State = StateParsing
	res.StatusCode = resp.StatusCode
	raw, hint := resp.Body, resp.Header.Get("Content-Encoding")
	if u.def.ResponseType == definition.ResponseRedirectionHeader {
		raw, hint = []byte(resolveLocation(desc.URL, resp.Header.Get("Location"))), ""
	}
	ext := u.extractor.Extract(raw, hint)
	if resp.Truncated {
		ext.Failures = append(ext.Failures, extractor.Failure{
			Reason: extractor.ReasonTruncated,
			Err:    fmt.Errorf("only the first %d bytes of the response were read", len(resp.Body)),
		})
	}
	res.applyExtraction(ext)
	log.Debug("response parsed", "status", resp.StatusCode, "values", len(ext.Values), "failures", len(ext.Failures), "response", getPrefix(ext.RawResponse, logPrefixLength))

	if requirePrimary && !res.HasPrimaryURL() {
		err = &OverallFailure{StatusCode: resp.StatusCode, Failures: ext.Failures, RawResponse: ext.RawResponse}
		log.Warn("upload failed", "status", resp.StatusCode, "error", err)
		res.State = StateFailed
		if len(res.Errors) == 0 {
			res.Errors = append(res.Errors, err.Error())
		}
		return res, err
	}

	res.State = StateDone
	log.Info("upload finished", "status", resp.StatusCode, "url", res.PrimaryURL)
	return res, nil
}

// resolveLocation makes a relative Location header absolute against the request url.
func resolveLocation(requestURL, location string) string {
	if location == "" {
		return ""
	}
	base, err := url.Parse(requestURL)
	if err != nil {
		return location
	}
	ref, err := url.Parse(location)
	if err != nil {
		return location
	}
	return base.ResolveReference(ref).String()
}

// inputLabel names the input of an upload: the file name, or the start of the text for text uploads.
func inputLabel(tctx *template.Context) string {
	if !tctx.IsText() || tctx.FileName != "" {
		return tctx.FileName
	}
	return getPrefix(strings.Join(strings.Fields(tctx.InputText), " "), inputLabelLength)
}

func getPrefix(input string, prefixLength int) string {
	if len(input) > prefixLength {
		return fmt.Sprintf("%s...", input[0:prefixLength])
	}
	return input
}
