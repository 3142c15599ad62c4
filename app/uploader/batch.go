package uploader

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jo-hoe/go-custom-uploader/app/template"
)

// BatchItem is the outcome of one upload of a batch.
type BatchItem struct {
	Result *Result
	Err    error
}

// Batch runs many independent uploads of one definition in parallel.
type Batch struct {
	uploader    *Uploader
	concurrency int
	limiter     *rate.Limiter
}

// NewBatch creates a batch runner. concurrency < 1 runs one upload at a time,
// perSecond <= 0 disables rate limiting.
func NewBatch(u *Uploader, concurrency int, perSecond float64) *Batch {
	if concurrency < 1 {
		concurrency = 1
	}
	b := &Batch{uploader: u, concurrency: concurrency}
	if perSecond > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return b
}

// Run uploads every context and returns the outcomes in input order. A failing upload does not stop the others.
func (b *Batch) Run(ctx context.Context, contexts []*template.Context) []BatchItem {
	items := make([]BatchItem, len(contexts))

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, tctx := range contexts {
		if tctx == nil {
			tctx = &template.Context{}
		}
		g.Go(func() error {
			if b.limiter != nil {
				if err := b.limiter.Wait(ctx); err != nil {
					res := &Result{State: StateFailed, Input: inputLabel(tctx)}
					res.fail(err)
					items[i] = BatchItem{Result: res, Err: err}
					return nil
				}
			}
			res, err := b.uploader.Upload(ctx, tctx)
			items[i] = BatchItem{Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
		}
	}
	slog.Info("batch finished", "definition", b.uploader.def.Name, "uploads", len(items), "failed", failed)
	return items
}
