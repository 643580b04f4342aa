package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
)

// TextExtractor turns one document file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "TXT"
	Method     string // "pdf-text" | "pdf-ocr" | "plain-text"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Quality    float32
}

// TextSource hands the pipeline the text of one (candidate, kind) pair.
// Implementations never fail: missing or unreadable documents yield "".
type TextSource interface {
	Text(ctx context.Context, slug string, kind constants.SourceKind) string
}
