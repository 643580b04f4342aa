package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
	"github.com/joseph-ayodele/candidate-dossiers/internal/ocr"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestOCRAdapterAcceptsReadableText(t *testing.T) {
	a := NewOCRAdapter(ocr.NewExtractorWithRunner(ocr.Config{}, nil, nil), nil)

	res, err := a.Extract(context.Background(), writeDoc(t, "ESTUDIOS UNIVERSITARIOS\nUniversidad Nacional de Ingeniería 1975"))
	require.NoError(t, err)
	assert.Equal(t, "plain-text", res.Method)
	assert.Contains(t, res.Text, "Universidad Nacional")
	assert.Greater(t, res.Quality, DefaultMinQuality)
}

func TestOCRAdapterRejectsGarbledText(t *testing.T) {
	p := writeDoc(t, "#### ---- 1234 //// ||| 5678 ====")

	_, err := NewOCRAdapter(ocr.NewExtractorWithRunner(ocr.Config{}, nil, nil), nil).Extract(context.Background(), p)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionFailure)

	_, err = NewOCRAdapter(ocr.NewExtractorWithRunner(ocr.Config{}, nil, nil), nil, WithMinQuality(0)).Extract(context.Background(), p)
	assert.NoError(t, err)
}

func TestOCRAdapterPassesThroughMissingFile(t *testing.T) {
	a := NewOCRAdapter(ocr.NewExtractorWithRunner(ocr.Config{}, nil, nil), nil)
	_, err := a.Extract(context.Background(), filepath.Join(t.TempDir(), "nobody.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
