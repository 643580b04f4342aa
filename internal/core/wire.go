package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
	"github.com/joseph-ayodele/candidate-dossiers/internal/export"
	"github.com/joseph-ayodele/candidate-dossiers/internal/extract"
	"github.com/joseph-ayodele/candidate-dossiers/internal/ocr"
	"github.com/joseph-ayodele/candidate-dossiers/internal/repository"
	"github.com/joseph-ayodele/candidate-dossiers/internal/rules"
)

// NewTextSource builds the document source backed by the external PDF
// tools.
func NewTextSource(cfg *common.Config, logger *slog.Logger) *extract.DocumentSource {
	ocrx := ocr.NewExtractor(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		MinTextChars:  cfg.OCR.MinTextChars,
		Timeout:       cfg.OCR.Timeout,
	}, logger)
	adapter := extract.NewOCRAdapter(ocrx, logger, extract.WithMinQuality(float32(cfg.OCR.MinQuality)))
	return extract.NewDocumentSource(cfg.Input.DocsRoot, adapter, cfg.Pipeline.TextCacheTTL, logger)
}

// OpenStore opens and migrates the SQL sink, or returns nil when no DSN is
// configured.
func OpenStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.Store, error) {
	if cfg.Database.DSN == "" {
		return nil, nil
	}
	store, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		return nil, common.NewAppError("SINK_ERROR", "open results store", err)
	}
	if err := store.HealthCheck(ctx, 3*time.Second); err != nil {
		store.Close()
		return nil, common.NewAppError("SINK_ERROR", "results store health", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, common.NewAppError("SINK_ERROR", "migrate results store", err)
	}
	return store, nil
}

// Build wires a Processor from the process config. The returned cleanup
// closes the SQL sink.
func Build(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*Processor, *extract.DocumentSource, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	lib, err := rules.Load(cfg.Input.RulesFile)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("rules loaded", "version", lib.Version, "fields", len(lib.Fields()))

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		if store != nil {
			store.Close()
		}
	}

	source := NewTextSource(cfg, logger)
	exporter := export.NewService(cfg.Output.Dir, cfg.Output.XLSX, logger)
	return NewProcessor(logger, cfg, lib, source, exporter, store), source, cleanup, nil
}
