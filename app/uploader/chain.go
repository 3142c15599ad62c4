package uploader

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/lo"

	"github.com/jo-hoe/go-custom-uploader/app/definition"
	"github.com/jo-hoe/go-custom-uploader/app/template"
)

// Chain runs uploaders one after another. Every step sees the values extracted by the
// steps before it, plus the raw response of the previous step under template.RawResponseKey.
// Only the last step has to produce a primary url. Chain stops at the first failing step
// and returns the results collected so far.
//
// When more than one step uploads the file, tctx.File must implement io.Seeker; it is
// rewound before each of those steps.
func Chain(ctx context.Context, steps []*Uploader, tctx *template.Context) ([]*Result, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("chain has no steps")
	}
	if tctx == nil {
		tctx = &template.Context{}
	}

	rewind, err := newRewinder(steps, tctx)
	if err != nil {
		return nil, err
	}

	prior := lo.Assign(tctx.PriorResults)
	results := make([]*Result, 0, len(steps))
	for i, step := range steps {
		if step.def.HasFile() {
			if err := rewind(); err != nil {
				return results, fmt.Errorf("chain step %d (%s): could not rewind file: %w", i+1, step.def.Name, err)
			}
		}
		stepCtx := &template.Context{
			FileName:     tctx.FileName,
			File:         tctx.File,
			InputText:    tctx.InputText,
			PriorResults: prior,
		}
		res, err := step.run(ctx, stepCtx, i == len(steps)-1)
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("chain step %d (%s): %w", i+1, step.def.Name, err)
		}

		prior = lo.Assign(prior, res.Extraction.Values)
		prior[template.RawResponseKey] = res.Extraction.RawResponse
	}
	return results, nil
}

// newRewinder returns a func that moves tctx.File back to where it was when the chain started.
func newRewinder(steps []*Uploader, tctx *template.Context) (func() error, error) {
	noop := func() error { return nil }
	fileSteps := lo.CountBy(steps, func(u *Uploader) bool { return u.def.HasFile() })
	if tctx.File == nil || fileSteps < 2 {
		return noop, nil
	}

	seeker, ok := tctx.File.(io.Seeker)
	if !ok {
		return nil, definition.NewConfigurationError("fileFormFieldName",
			fmt.Sprintf("is set on %d chained steps but the file cannot be rewound", fileSteps))
	}
	start, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("could not read file offset: %w", err)
	}
	return func() error {
		_, err := seeker.Seek(start, io.SeekStart)
		return err
	}, nil
}
