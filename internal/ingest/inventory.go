package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/candidate-dossiers/constants"
)

// DocumentRef locates one document under the documents root.
type DocumentRef struct {
	Path string
	Slug string
	Kind constants.SourceKind
	Ext  string
}

// ParsePath maps {root}/{kind-dir}/{slug}.{ext} back to its parts. Files
// outside a kind directory or with another extension are rejected.
func ParsePath(root, path string) (DocumentRef, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return DocumentRef{}, false
	}
	dir, file := filepath.Split(rel)
	dir = filepath.Clean(dir)
	if strings.ContainsRune(dir, filepath.Separator) {
		return DocumentRef{}, false
	}
	kind, ok := constants.ParseSourceKind(dir)
	if !ok || constants.DocumentDir(kind) != dir {
		return DocumentRef{}, false
	}
	ext := constants.NormalizeExt(filepath.Ext(file))
	if !allowedExt(ext) {
		return DocumentRef{}, false
	}
	slug := strings.TrimSuffix(file, filepath.Ext(file))
	if slug == "" || isHidden(file) {
		return DocumentRef{}, false
	}
	return DocumentRef{Path: path, Slug: slug, Kind: kind, Ext: ext}, true
}

// Coverage tells which document kinds a candidate has on disk.
type Coverage struct {
	Slug  string
	Kinds map[constants.SourceKind]string // kind -> path
}

// Missing lists the document kinds absent for the candidate, in lookup order.
func (c Coverage) Missing() []constants.SourceKind {
	var out []constants.SourceKind
	for _, k := range constants.DocumentKinds {
		if _, ok := c.Kinds[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

type DirStats struct {
	Scanned uint32
	Matched uint32
	Orphans uint32
	Failed  uint32
}

// Inventory is the result of scanning the documents root against a roster.
type Inventory struct {
	Candidates []Coverage // roster order
	Orphans    []string   // matched documents whose slug is not in the roster
	Stats      DirStats
}

// ScanDocuments walks root and matches every document to the roster slugs.
// A missing kind directory is not an error. When both a PDF and a text file
// exist for the same pair, the earlier extension in AllowedExtensions wins.
func ScanDocuments(root string, slugs []string) (Inventory, error) {
	if strings.TrimSpace(root) == "" {
		return Inventory{}, errors.New("documents root is required")
	}
	inv := Inventory{Candidates: make([]Coverage, len(slugs))}
	index := make(map[string]int, len(slugs))
	for i, s := range slugs {
		index[s] = i
		inv.Candidates[i] = Coverage{Slug: s, Kinds: map[constants.SourceKind]string{}}
	}

	for _, kind := range constants.DocumentKinds {
		dir := filepath.Join(root, constants.DocumentDir(kind))
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if errors.Is(walkErr, fs.ErrNotExist) && path == dir {
					return filepath.SkipDir
				}
				inv.Stats.Failed++
				return nil
			}
			if d.IsDir() {
				if path != dir {
					return filepath.SkipDir
				}
				return nil
			}
			inv.Stats.Scanned++
			ref, ok := ParsePath(root, path)
			if !ok {
				return nil
			}
			inv.Stats.Matched++
			i, ok := index[ref.Slug]
			if !ok {
				inv.Orphans = append(inv.Orphans, path)
				inv.Stats.Orphans++
				return nil
			}
			if prev, dup := inv.Candidates[i].Kinds[ref.Kind]; dup && extRank(prev) <= extRank(path) {
				return nil
			}
			inv.Candidates[i].Kinds[ref.Kind] = path
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return inv, fmt.Errorf("walk %s: %w", dir, err)
		}
	}
	sort.Strings(inv.Orphans)
	return inv, nil
}

// RootExists reports whether root is an existing directory.
func RootExists(root string) bool {
	info, err := os.Stat(root)
	return err == nil && info.IsDir()
}

func extRank(path string) int {
	ext := constants.NormalizeExt(filepath.Ext(path))
	for i, e := range constants.AllowedExtensions {
		if e == ext {
			return i
		}
	}
	return len(constants.AllowedExtensions)
}

func allowedExt(ext string) bool {
	return extRank("x."+ext) < len(constants.AllowedExtensions)
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
