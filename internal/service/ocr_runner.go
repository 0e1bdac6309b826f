package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/ocr"
	"fisbench/internal/port"
)

// OCRProviders resolves enabled OCR providers by id.
type OCRProviders interface {
	Get(id domain.ProviderID) (port.OCRProvider, error)
	IDs() []domain.ProviderID
}

// ocrOutcome is one provider's OCR result, or its failure.
type ocrOutcome struct {
	Provider  domain.ProviderID
	Output    *port.OCROutput
	LatencyMs float64
	Cached    bool
	Err       error
}

// toInput converts the outcome into orchestrator input.
func (o ocrOutcome) toInput(promptVersion int) ProviderInput {
	in := ProviderInput{Provider: o.Provider, PromptVersion: promptVersion}
	if o.Err != nil {
		in.Error = o.Err.Error()
		return in
	}
	if o.Output != nil {
		in.Text = o.Output.Text
		in.Hints = o.Output.Hints
	}
	return in
}

// ocrRunner fans an image out to OCR providers, consulting the cache first.
type ocrRunner struct {
	providers   OCRProviders
	cache       port.OCRCache
	ttl         time.Duration
	timeout     time.Duration
	concurrency int
	log         *logger.Logger
}

func newOCRRunner(providers OCRProviders, cache port.OCRCache, ttl, timeout time.Duration, concurrency int, log *logger.Logger) *ocrRunner {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &ocrRunner{
		providers:   providers,
		cache:       cache,
		ttl:         ttl,
		timeout:     timeout,
		concurrency: concurrency,
		log:         log,
	}
}

// resolve returns ids, or every enabled provider when ids is empty. Unknown
// or disabled ids fail the whole request.
func (r *ocrRunner) resolve(ids []domain.ProviderID) ([]port.OCRProvider, error) {
	if len(ids) == 0 {
		ids = r.providers.IDs()
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no OCR providers enabled: %w", domain.ErrUnsupportedProvider)
	}
	seen := make(map[domain.ProviderID]bool, len(ids))
	out := make([]port.OCRProvider, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		p, err := r.providers.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// prepare downscales images for OCR. PDFs pass through untouched.
func prepare(data []byte, file *checkedFile) (port.OCRInput, error) {
	if file.Type == domain.FileTypePDF {
		return port.OCRInput{Image: data, ContentType: file.ContentType}, nil
	}
	prepared, err := ocr.Preprocess(data)
	if err != nil {
		return port.OCRInput{}, fmt.Errorf("preprocessing image: %w", errors.Join(domain.ErrUnsupportedFileType, err))
	}
	return port.OCRInput{Image: prepared.PNG, ContentType: "image/png"}, nil
}

// run extracts text with every provider concurrently under one deadline. The
// result order matches providers.
func (r *ocrRunner) run(ctx context.Context, imageHash string, input port.OCRInput, providers []port.OCRProvider) []ocrOutcome {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make([]ocrOutcome, len(providers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			results[i] = r.extract(gctx, imageHash, input, p)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *ocrRunner) extract(ctx context.Context, imageHash string, input port.OCRInput, p port.OCRProvider) (res ocrOutcome) {
	id := p.ID()
	res.Provider = id
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("ocr provider panicked", "provider", id, "panic", rec)
			res.Err = fmt.Errorf("panic: %v", rec)
		}
		res.LatencyMs = float64(time.Since(start).Microseconds()) / 1000
	}()

	if r.cache != nil {
		out, hit, err := r.cache.Get(ctx, imageHash, id)
		if err != nil {
			r.log.Warn("ocr cache read failed", "provider", id, "error", err)
		} else if hit {
			res.Output, res.Cached = out, true
			return res
		}
	}

	out, err := p.Extract(ctx, input)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("timeout: %w", domain.ErrBatchTimeout)
		}
		r.log.Error("ocr extraction failed", "provider", id, "error", err)
		res.Err = err
		return res
	}
	res.Output = out

	if r.cache != nil && out.Text != "" {
		if err := r.cache.Set(ctx, imageHash, id, out, r.ttl); err != nil {
			r.log.Warn("ocr cache write failed", "provider", id, "error", err)
		}
	}
	return res
}
