package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
	"github.com/joseph-ayodele/candidate-dossiers/internal/ocr"
)

// DefaultMinQuality rejects text that is mostly symbols and digits, the usual
// result of OCR over a photographed or stamped page.
const DefaultMinQuality float32 = 0.25

// OCRAdapter exposes ocr.Extractor as a TextExtractor and rejects readings too
// garbled to extract fields from.
type OCRAdapter struct {
	e          *ocr.Extractor
	minQuality float32
	logger     *slog.Logger
}

type AdapterOption func(*OCRAdapter)

// WithMinQuality sets the quality floor. 0 accepts any non-empty text.
func WithMinQuality(q float32) AdapterOption {
	return func(a *OCRAdapter) { a.minQuality = q }
}

func NewOCRAdapter(e *ocr.Extractor, logger *slog.Logger, opts ...AdapterOption) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &OCRAdapter{e: e, minQuality: DefaultMinQuality, logger: logger}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *OCRAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.e.Extract(ctx, path)
	res := TextExtractionResult{
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Quality:    r.Quality,
	}
	if err != nil {
		return res, err
	}
	for _, w := range r.Warnings {
		a.logger.Debug("extraction warning", "path", path, "method", r.Method, "warning", w)
	}
	if r.Text != "" && r.Quality < a.minQuality {
		return res, fmt.Errorf("%w: quality %.2f below %.2f (%s)", common.ErrExtractionFailure, r.Quality, a.minQuality, r.Method)
	}
	a.logger.Debug("text extracted", "path", path, "method", r.Method, "pages", r.Pages,
		"quality", r.Quality, "duration_ms", r.Duration.Milliseconds())
	return res, nil
}
