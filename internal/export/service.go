package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/candidate-dossiers/internal/common"
	"github.com/joseph-ayodele/candidate-dossiers/internal/pipeline"
)

// WorkbookName is the file name of the combined XLSX workbook.
const WorkbookName = "candidatos.xlsx"

// Service writes the views of a run to an output directory.
type Service struct {
	dir    string
	xlsx   bool
	logger *slog.Logger
}

func NewService(dir string, xlsx bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dir: dir, xlsx: xlsx, logger: logger}
}

// WriteAll renders the fields, features and scores views as CSV and JSON
// (and the XLSX workbook when enabled) from the same records. It returns
// the written paths in write order.
func (s *Service) WriteAll(records []pipeline.Record, fieldNames []string) ([]string, error) {
	start := time.Now()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, common.NewAppError("EXPORT_ERROR", "create output dir", err)
	}

	tables := Tables(records, fieldNames)
	var paths []string
	for _, t := range tables {
		var csvBuf, jsonBuf bytes.Buffer
		if err := WriteCSV(&csvBuf, t); err != nil {
			return paths, common.NewAppError("EXPORT_ERROR", "encode "+t.Name+".csv", err)
		}
		if err := WriteJSON(&jsonBuf, t); err != nil {
			return paths, common.NewAppError("EXPORT_ERROR", "encode "+t.Name+".json", err)
		}
		for _, out := range []struct {
			ext  string
			data []byte
		}{{".csv", csvBuf.Bytes()}, {".json", jsonBuf.Bytes()}} {
			p := filepath.Join(s.dir, t.Name+out.ext)
			if err := writeFileAtomic(p, out.data); err != nil {
				return paths, common.NewAppError("EXPORT_ERROR", "write "+p, err)
			}
			paths = append(paths, p)
		}
	}

	if s.xlsx {
		data, err := WorkbookXLSX(tables)
		if err != nil {
			return paths, common.NewAppError("EXPORT_ERROR", "render workbook", err)
		}
		p := filepath.Join(s.dir, WorkbookName)
		if err := writeFileAtomic(p, data); err != nil {
			return paths, common.NewAppError("EXPORT_ERROR", "write "+p, err)
		}
		paths = append(paths, p)
		s.logger.Info("export.xlsx.ok", "path", p, "rows", len(records))
	}

	s.logger.Info("export.ok",
		"dir", s.dir,
		"rows", len(records),
		"files", len(paths),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return paths, nil
}

// writeFileAtomic replaces path through a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
