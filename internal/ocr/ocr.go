package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "spa"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit

	// MinTextChars is the amount of normalized text below which a PDF is
	// considered scanned and re-read through OCR. Default 200.
	MinTextChars int
	// Timeout bounds each external tool invocation. 0 = no limit.
	Timeout time.Duration
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.TEXT
	Method     string // "pdf-text" | "pdf-ocr" | "plain-text"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Quality    float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return NewExtractorWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewExtractorWithRunner is NewExtractor with an injected command runner.
func NewExtractorWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 200
	}
	return &Extractor{cfg: cfg, runner: runner, logger: logger}
}

// Extract picks a strategy based on file extension. Missing files are
// reported with an error wrapping os.ErrNotExist.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	if _, err := os.Stat(path); err != nil {
		return ExtractionResult{}, err
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err := e.extractPDF(ctx, path)
		res.Duration = time.Since(start)
		return res, err
	case constants.TEXT:
		b, err := os.ReadFile(path)
		if err != nil {
			return ExtractionResult{SourceType: constants.TEXT}, err
		}
		txt := Normalize(string(b))
		return ExtractionResult{
			Text:       txt,
			Pages:      1,
			SourceType: constants.TEXT,
			Method:     "plain-text",
			Duration:   time.Since(start),
			Quality:    textQuality(txt),
		}, nil
	default:
		e.logger.Error("unsupported extraction extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
}

// extractPDF reads the embedded text layer first and falls back to OCR when
// the layer is too thin (scanned CVs). The better of the two readings wins.
func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.PDF, Language: e.cfg.TesseractLang}

	text, pages, textErr := e.textLayer(ctx, path)
	if textErr == nil {
		res.Text = Normalize(text)
		res.Pages = pages
		res.Method = "pdf-text"
		res.Quality = textQuality(res.Text)
		if len([]rune(res.Text)) >= e.cfg.MinTextChars {
			return res, nil
		}
		e.logger.Info("pdf text layer too thin, falling back to ocr",
			"path", path, "chars", len([]rune(res.Text)), "min_chars", e.cfg.MinTextChars)
	} else {
		e.logger.Warn("pdftotext failed, falling back to ocr", "path", path, "error", textErr)
	}

	ocrText, ocrPages, ocrWarns, ocrErr := e.scanPages(ctx, path)
	res.Warnings = append(res.Warnings, ocrWarns...)
	if ocrErr != nil {
		if textErr != nil {
			return res, errors.Join(textErr, ocrErr)
		}
		// keep the thin text layer rather than nothing
		res.Warnings = append(res.Warnings, ocrErr.Error())
		return res, nil
	}
	ocrText = Normalize(ocrText)
	if q := textQuality(ocrText); textErr != nil || len([]rune(ocrText)) > len([]rune(res.Text)) {
		res.Text = ocrText
		res.Pages = ocrPages
		res.Method = "pdf-ocr"
		res.Quality = q
	}
	return res, nil
}
