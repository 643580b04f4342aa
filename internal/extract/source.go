package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
)

// DocumentSource resolves {root}/{kind-dir}/{slug}.{pdf,txt} and extracts it.
// Extracted text is cached by path, size and modification time, so a daemon
// re-run only re-reads documents that changed.
type DocumentSource struct {
	root      string
	extractor TextExtractor
	cache     *cache.Cache
	logger    *slog.Logger
}

// NewDocumentSource creates a source over root. ttl <= 0 disables caching.
func NewDocumentSource(root string, extractor TextExtractor, ttl time.Duration, logger *slog.Logger) *DocumentSource {
	if logger == nil {
		logger = slog.Default()
	}
	var c *cache.Cache
	if ttl > 0 {
		c = cache.New(ttl, 2*ttl)
	}
	return &DocumentSource{root: root, extractor: extractor, cache: c, logger: logger}
}

// Resolve returns the first existing document path for slug and kind.
// The error wraps common.ErrDocumentMissing when none exists.
func (s *DocumentSource) Resolve(slug string, kind constants.SourceKind) (string, fs.FileInfo, error) {
	dir := constants.DocumentDir(kind)
	if dir == "" {
		return "", nil, fmt.Errorf("%w: %s is not file backed", common.ErrDocumentMissing, kind)
	}
	for _, ext := range constants.AllowedExtensions {
		p := filepath.Join(s.root, dir, slug+"."+ext)
		fi, err := os.Stat(p)
		if err == nil && !fi.IsDir() {
			return p, fi, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("%w: stat %s: %v", common.ErrDocumentMissing, p, err)
		}
	}
	return "", nil, fmt.Errorf("%w: %s/%s.{%s}", common.ErrDocumentMissing, dir, slug, strings.Join(constants.AllowedExtensions, ","))
}

// Lookup resolves and extracts one document, reporting the taxonomy error.
func (s *DocumentSource) Lookup(ctx context.Context, slug string, kind constants.SourceKind) (string, error) {
	path, fi, err := s.Resolve(slug, kind)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s|%d|%d", path, fi.Size(), fi.ModTime().UnixNano())
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(string), nil
		}
	}

	res, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrExtractionFailure, path, err)
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", fmt.Errorf("%w: %s: no usable text", common.ErrExtractionFailure, path)
	}
	if s.cache != nil {
		s.cache.SetDefault(key, text)
	}
	return text, nil
}

// Text implements TextSource: failures are logged and become empty text.
func (s *DocumentSource) Text(ctx context.Context, slug string, kind constants.SourceKind) string {
	text, err := s.Lookup(ctx, slug, kind)
	if err != nil {
		logger := common.LoggerFromContext(ctx, s.logger)
		if errors.Is(err, common.ErrDocumentMissing) {
			logger.Info("document missing", "kind", kind, "code", common.ErrorCode(err))
		} else {
			logger.Warn("document extraction failed", "kind", kind, "code", common.ErrorCode(err), "error", err)
		}
		return ""
	}
	return text
}

// Flush drops every cached text.
func (s *DocumentSource) Flush() {
	if s.cache != nil {
		s.cache.Flush()
	}
}
