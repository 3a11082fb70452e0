// Package export writes run artifacts to disk: CSV dumps of the generated
// domain, a JSON summary, and a compressed archive of the run directory.
package export

import (
	"archive/tar"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"domgen/internal/domain"
	"domgen/internal/runinfo"
	"domgen/internal/sink"
	"domgen/internal/util"
)

// Exporter writes run artifacts to disk.
type Exporter struct {
	OutputDir string
	KeepRaw   bool
	runSeq    int
}

// Run describes one export directory.
type Run struct {
	ID  string
	Dir string
}

// Summary captures the persisted metadata for a run.
type Summary struct {
	Seed           int64             `json:"seed"`
	Driver         string            `json:"driver"`
	Table          string            `json:"table"`
	Counters       domain.Counters   `json:"counters"`
	DurationSecs   float64           `json:"duration_seconds"`
	UploadLocation string            `json:"upload_location,omitempty"`
	ArchiveName    string            `json:"archive_name,omitempty"`
	ArchiveCodec   string            `json:"archive_codec,omitempty"`
	RunInfo        *runinfo.BasicInfo `json:"run_info,omitempty"`
	Timestamp      string            `json:"timestamp"`
}

const (
	// ArchiveName is the compressed artifact written per run.
	ArchiveName  = "run.tar.zst"
	archiveCodec = "zstd"
)

// New creates an exporter that writes run directories under outputDir.
func New(outputDir string, keepRaw bool) *Exporter {
	return &Exporter{OutputDir: outputDir, KeepRaw: keepRaw}
}

// NewRun allocates a new run directory.
func (e *Exporter) NewRun() (Run, error) {
	e.runSeq++
	runID := uuid.New().String()
	if v7, err := uuid.NewV7(); err == nil {
		runID = v7.String()
	}
	dir := filepath.Join(e.OutputDir, fmt.Sprintf("run_%04d_%s", e.runSeq, runID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Run{}, err
	}
	return Run{ID: runID, Dir: dir}, nil
}

// WriteDomainCSV dumps the wide domain table.
func (e *Exporter) WriteDomainCSV(run Run, cells []domain.Cell) error {
	return e.writeCSV(run, "cell_domain.csv",
		[]string{"entity_id", "cell_id", "variable_id", "attribute", "domain", "domain_size", "init_value", "init_index", "fixed"},
		len(cells), func(i int) []string {
			cell := cells[i]
			vid := ""
			if cell.VID != domain.NoVID {
				vid = strconv.FormatInt(cell.VID, 10)
			}
			fixed := "0"
			if cell.Fixed {
				fixed = "1"
			}
			return []string{
				strconv.FormatInt(cell.TID, 10),
				strconv.FormatInt(cell.CID, 10),
				vid,
				cell.Attribute,
				sink.SerializeDomain(cell.Domain),
				strconv.Itoa(len(cell.Domain)),
				cell.InitValue,
				strconv.Itoa(cell.InitIndex),
				fixed,
			}
		})
}

// WritePosValuesCSV dumps the long-format expansion.
func (e *Exporter) WritePosValuesCSV(run Run, values []sink.PosValue) error {
	return e.writeCSV(run, "pos_values.csv",
		[]string{"variable_id", "cell_id", "entity_id", "attribute", "candidate_value", "candidate_rank"},
		len(values), func(i int) []string {
			pv := values[i]
			return []string{
				strconv.FormatInt(pv.VID, 10),
				strconv.FormatInt(pv.CID, 10),
				strconv.FormatInt(pv.TID, 10),
				pv.Attribute,
				pv.Value,
				strconv.Itoa(pv.Rank),
			}
		})
}

func (e *Exporter) writeCSV(run Run, name string, header []string, rows int, record func(int) []string) error {
	f, err := os.Create(filepath.Join(run.Dir, name))
	if err != nil {
		return err
	}
	defer util.CloseWithErr(f, name)
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		if err := w.Write(record(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteSummary writes summary.json into the run directory.
func (e *Exporter) WriteSummary(run Run, summary Summary) error {
	f, err := os.Create(filepath.Join(run.Dir, "summary.json"))
	if err != nil {
		return err
	}
	defer util.CloseWithErr(f, "summary output")
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(summary)
}

// Archive compresses the run directory into run.tar.zst. When KeepRaw is
// false the CSV dumps are removed afterwards, leaving only the archive
// and the summary.
func (e *Exporter) Archive(run Run) (name string, codec string, err error) {
	archivePath := filepath.Join(run.Dir, ArchiveName)
	if removeErr := os.Remove(archivePath); removeErr != nil && !os.IsNotExist(removeErr) {
		return "", "", removeErr
	}
	defer func() {
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()
	file, err := os.Create(archivePath)
	if err != nil {
		return "", "", err
	}
	defer util.CloseWithErr(file, "archive output")

	zw, err := zstd.NewWriter(file)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if closeErr := zw.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	tw := tar.NewWriter(zw)
	defer func() {
		if closeErr := tw.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	var raw []string
	walkErr := filepath.WalkDir(run.Dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path == archivePath {
			return nil
		}
		rel, err := filepath.Rel(run.Dir, path)
		if err != nil {
			return err
		}
		if filepath.Ext(rel) == ".csv" {
			raw = append(raw, path)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, src); err != nil {
			util.CloseWithErr(src, "archive source")
			return err
		}
		util.CloseWithErr(src, "archive source")
		return nil
	})
	if walkErr != nil {
		return "", "", walkErr
	}
	if !e.KeepRaw {
		for _, path := range raw {
			if removeErr := os.Remove(path); removeErr != nil {
				util.Warnf("remove raw dump %s: %v", path, removeErr)
			}
		}
	}
	return ArchiveName, archiveCodec, nil
}
