package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestParsePath(t *testing.T) {
	root := filepath.Join("data", "docs")
	tests := []struct {
		path string
		ok   bool
		slug string
		kind constants.SourceKind
	}{
		{filepath.Join(root, "hojas-vida", "ana-quispe.pdf"), true, "ana-quispe", constants.SourceCV},
		{filepath.Join(root, "planes-gobierno", "ana-quispe.TXT"), true, "ana-quispe", constants.SourcePlan},
		{filepath.Join(root, "resumenes-planes", "bruno.pdf"), true, "bruno", constants.SourcePlanSummary},
		{filepath.Join(root, "hojas-vida", "ana.docx"), false, "", ""},
		{filepath.Join(root, "hojas-vida", ".hidden.pdf"), false, "", ""},
		{filepath.Join(root, "otros", "ana.pdf"), false, "", ""},
		{filepath.Join(root, "hoja_vida", "ana.pdf"), false, "", ""},
		{filepath.Join(root, "hojas-vida", "sub", "ana.pdf"), false, "", ""},
		{filepath.Join(root, "ana.pdf"), false, "", ""},
		{filepath.Join("elsewhere", "hojas-vida", "ana.pdf"), false, "", ""},
	}
	for _, tt := range tests {
		ref, ok := ParsePath(root, tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		if tt.ok {
			assert.Equal(t, tt.slug, ref.Slug, tt.path)
			assert.Equal(t, tt.kind, ref.Kind, tt.path)
		}
	}
}

func TestScanDocuments(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "hojas-vida", "ana-quispe.txt"))
	touch(t, filepath.Join(root, "hojas-vida", "ana-quispe.pdf"))
	touch(t, filepath.Join(root, "planes-gobierno", "ana-quispe.pdf"))
	touch(t, filepath.Join(root, "hojas-vida", "desconocido.pdf"))
	touch(t, filepath.Join(root, "hojas-vida", "notas.docx"))
	// resumenes-planes does not exist at all

	inv, err := ScanDocuments(root, []string{"ana-quispe", "bruno-diaz"})
	require.NoError(t, err)
	require.Len(t, inv.Candidates, 2)

	ana := inv.Candidates[0]
	assert.Equal(t, "ana-quispe", ana.Slug)
	assert.Equal(t, filepath.Join(root, "hojas-vida", "ana-quispe.pdf"), ana.Kinds[constants.SourceCV])
	assert.Equal(t, []constants.SourceKind{constants.SourcePlanSummary}, ana.Missing())

	bruno := inv.Candidates[1]
	assert.Equal(t, constants.DocumentKinds, bruno.Missing())

	assert.Equal(t, []string{filepath.Join(root, "hojas-vida", "desconocido.pdf")}, inv.Orphans)
	assert.Equal(t, DirStats{Scanned: 5, Matched: 4, Orphans: 1}, inv.Stats)
}

func TestScanDocumentsRequiresRoot(t *testing.T) {
	_, err := ScanDocuments(" ", nil)
	assert.Error(t, err)
	assert.False(t, RootExists(filepath.Join(t.TempDir(), "missing")))
	assert.True(t, RootExists(t.TempDir()))
}

func TestWatcherBatchesChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "hojas-vida"), 0o755))
	cfgDir := t.TempDir()
	rosterFile := filepath.Join(cfgDir, "roster.yaml")
	touch(t, rosterFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	batches, _, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{root},
		Files:    []string{rosterFile},
		Debounce: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	cv := filepath.Join(root, "hojas-vida", "ana-quispe.pdf")
	touch(t, cv)
	touch(t, filepath.Join(root, "hojas-vida", "ignored.docx"))
	touch(t, filepath.Join(cfgDir, "other.yaml"))
	touch(t, rosterFile)

	seen := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for !(seen[cv] && seen[rosterFile]) {
		select {
		case b := <-batches:
			for _, p := range b {
				seen[p] = true
			}
		case <-deadline:
			t.Fatalf("no batch with both changes, got %v", seen)
		}
	}
	assert.False(t, seen[filepath.Join(root, "hojas-vida", "ignored.docx")])
	assert.False(t, seen[filepath.Join(cfgDir, "other.yaml")])

	cancel()
	for range batches {
	}
}

func TestStartWatcherNeedsTargets(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
