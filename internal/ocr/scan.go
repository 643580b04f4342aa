package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// pageBreak separates OCR'd pages in the joined text.
const pageBreak = "\n\f\n"

// textLayer reads the embedded text of a PDF. pdftotext ends every page with
// a form feed.
func (e *Extractor) textLayer(ctx context.Context, path string) (text string, pages int, err error) {
	out, err := e.run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, err
	}
	text = string(out)
	pages = 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")
	return text, pages, nil
}

// scanPages rasterizes the PDF and recognizes every page in page order. Pages
// that fail or come back blank are skipped with a warning; the scan fails only
// when no page produced text.
func (e *Extractor) scanPages(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "dossier-scan-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove scan dir", "path", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	if _, err := e.run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix); err != nil {
		return "", 0, nil, err
	}

	images, err := renderedPages(prefix)
	if err != nil {
		return "", 0, nil, err
	}
	if e.cfg.MaxPages > 0 && len(images) > e.cfg.MaxPages {
		warnings = append(warnings, fmt.Sprintf("scanned %d of %d pages", e.cfg.MaxPages, len(images)))
		images = images[:e.cfg.MaxPages]
	}

	var b strings.Builder
	for i, img := range images {
		txt, err := e.recognize(ctx, img)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i+1, err))
			continue
		case strings.TrimSpace(txt) == "":
			warnings = append(warnings, fmt.Sprintf("page %d: blank", i+1))
			continue
		}
		if b.Len() > 0 {
			b.WriteString(pageBreak)
		}
		b.WriteString(txt)
	}
	if b.Len() == 0 {
		return "", len(images), warnings, fmt.Errorf("ocr produced no text for %d pages", len(images))
	}
	return b.String(), len(images), warnings, nil
}

// recognize runs tesseract on one page image in the configured language.
func (e *Extractor) recognize(ctx context.Context, image string) (string, error) {
	args := []string{image, "stdout", "-l", e.cfg.TesseractLang, "-c", "preserve_interword_spaces=1"}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	out, err := e.run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", err
	}
	// form boxes come out as rows of underscores or dashes
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}

// renderedPages lists prefix-N.png files ordered by page number. pdftoppm
// zero-pads N only to the width of the page count.
func renderedPages(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.New("pdftoppm rendered no pages")
	}
	number := func(p string) int {
		n, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(p, prefix+"-"), ".png"))
		return n
	}
	sort.Slice(matches, func(i, j int) bool { return number(matches[i]) < number(matches[j]) })
	return matches, nil
}
