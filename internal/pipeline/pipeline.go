// =============================================================================
// gomarc - Conversion Pipeline
// =============================================================================
//
// This module orchestrates record conversion between serialized formats:
//
//   1. Read all records from the source (binary transmission or CSV)
//   2. Hand them to the writer for the target format, which runs the
//      optional HTML entity pass per record
//   3. Finish the output document
//
// Batch runs scan the input directory, convert each file independently,
// move converted sources to the archive directory, and produce a run report
// keyed by a UUID. One file failing does not stop the others unless
// continue_on_error is disabled.
//
// =============================================================================

package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andrmayo/gomarc/internal/config"
	"github.com/andrmayo/gomarc/pkg/marc"
)

// Options configures a single file conversion.
type Options struct {
	// From is the input format: "marc" or "csv".
	From string
	// To is the output format: "marc", "csv", "json", "text", "xml",
	// or "xlsx".
	To string
	// HTMLEntities enables the entity transcoding pass.
	HTMLEntities bool
	// InsertionOrder selects first-seen column order for CSV/XLSX headers.
	InsertionOrder bool
}

// outputExtensions maps output formats to file extensions.
var outputExtensions = map[string]string{
	"marc": ".dat",
	"csv":  ".csv",
	"json": ".json",
	"text": ".txt",
	"xml":  ".xml",
	"xlsx": ".xlsx",
}

// inputExtensions maps input formats to the extensions scanned in batch
// mode.
var inputExtensions = map[string][]string{
	"marc": {".dat", ".mrc", ".marc"},
	"csv":  {".csv"},
}

// FileResult records the outcome of converting one file.
type FileResult struct {
	// Source is the input file path.
	Source string
	// Output is the output file path, empty when conversion failed early.
	Output string
	// Records is the number of records converted.
	Records int
	// Err is the conversion error, nil on success.
	Err error
}

// Report summarizes a batch run.
type Report struct {
	// RunID is the unique identifier of this run.
	RunID string
	// Started is when the run began.
	Started time.Time
	// Elapsed is the total run duration.
	Elapsed time.Duration
	// Results holds one entry per discovered file.
	Results []FileResult
	// Succeeded and Failed count the per-file outcomes.
	Succeeded int
	Failed    int
	// TotalRecords counts records across all successful files.
	TotalRecords int
}

// ConvertFile converts one file between formats and returns the number of
// records written.
func ConvertFile(inPath, outPath string, opts Options) (int, error) {
	records, err := readRecords(inPath, opts.From)
	if err != nil {
		return 0, err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := WriteRecords(out, records, opts); err != nil {
		return 0, err
	}
	return len(records), nil
}

// WriteRecords serializes records to w in the target format.
//
// Formats with a session column schema (csv, xlsx) take the batch path so
// the header covers every record; the other formats are written one record
// at a time.
func WriteRecords(w io.Writer, records []*marc.Record, opts Options) error {
	writer, err := newWriter(w, opts)
	if err != nil {
		return err
	}

	type batchWriter interface {
		WriteAll([]*marc.Record) error
	}

	if bw, ok := writer.(batchWriter); ok {
		if err := bw.WriteAll(records); err != nil {
			return fmt.Errorf("failed to write records: %w", err)
		}
	} else {
		for i, rec := range records {
			if err := writer.Write(rec); err != nil {
				return fmt.Errorf("failed to write record %d: %w", i+1, err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish output: %w", err)
	}
	return nil
}

// readRecords reads every record from a source file.
func readRecords(path, format string) ([]*marc.Record, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	switch format {
	case "marc":
		return marc.NewMARCReader(in).ReadAll()
	case "csv":
		reader, err := marc.NewCSVReader(in)
		if err != nil {
			return nil, err
		}
		return reader.ReadAll()
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

// newWriter builds the writer for the target format.
func newWriter(w io.Writer, opts Options) (marc.Writer, error) {
	wopts := []marc.WriterOption{marc.WithHTMLEntities(opts.HTMLEntities)}
	if opts.InsertionOrder {
		wopts = append(wopts, marc.WithInsertionOrder())
	}

	switch opts.To {
	case "marc":
		return marc.NewMARCWriter(w, wopts...), nil
	case "csv":
		return marc.NewCSVWriter(w, wopts...), nil
	case "json":
		return marc.NewJSONWriter(w, wopts...), nil
	case "text":
		return marc.NewTextWriter(w, wopts...), nil
	case "xml":
		return marc.NewXMLWriter(w, wopts...), nil
	case "xlsx":
		return marc.NewXLSXWriter(w, wopts...), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.To)
	}
}

// Run executes a batch conversion over every matching file in the input
// directory.
func Run(cfg *config.Config) (*Report, error) {
	report := &Report{
		RunID:   uuid.New().String(),
		Started: time.Now(),
	}
	logger := slog.With("run_id", report.RunID)

	files, err := discoverFiles(cfg.InputDir, cfg.From)
	if err != nil {
		return nil, err
	}
	logger.Info("starting batch conversion",
		"files", len(files), "from", cfg.From, "to", cfg.To)

	opts := Options{
		From:           cfg.From,
		To:             cfg.To,
		HTMLEntities:   cfg.HTMLEntities,
		InsertionOrder: cfg.InsertionOrder,
	}

	for _, src := range files {
		result := convertAndArchive(src, cfg, opts)
		report.Results = append(report.Results, result)

		if result.Err != nil {
			report.Failed++
			logger.Error("conversion failed", "file", src, "error", result.Err)
			if cfg.ContinueOnError != nil && !*cfg.ContinueOnError {
				break
			}
			continue
		}
		report.Succeeded++
		report.TotalRecords += result.Records
		logger.Info("converted file",
			"file", src, "output", result.Output, "records", result.Records)
	}

	report.Elapsed = time.Since(report.Started)
	if err := writeReport(cfg.OutputDir, report); err != nil {
		logger.Warn("failed to write run report", "error", err)
	}
	logger.Info("batch conversion finished",
		"succeeded", report.Succeeded, "failed", report.Failed,
		"records", report.TotalRecords, "elapsed", report.Elapsed)
	return report, nil
}

// convertAndArchive converts one file and moves the source to the archive
// directory on success.
func convertAndArchive(src string, cfg *config.Config, opts Options) FileResult {
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	outPath := filepath.Join(cfg.OutputDir, base+outputExtensions[opts.To])

	result := FileResult{Source: src, Output: outPath}
	result.Records, result.Err = ConvertFile(src, outPath, opts)
	if result.Err != nil {
		result.Output = ""
		return result
	}

	archived := filepath.Join(cfg.ArchiveDir, filepath.Base(src))
	if err := os.Rename(src, archived); err != nil {
		result.Err = fmt.Errorf("converted but failed to archive source: %w", err)
	}
	return result
}

// discoverFiles lists the input directory's files with the extensions of
// the given input format.
func discoverFiles(dir, format string) ([]string, error) {
	extensions, ok := inputExtensions[format]
	if !ok {
		return nil, fmt.Errorf("unknown input format %q", format)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range extensions {
			if ext == want {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	return files, nil
}

// writeReport writes the run summary next to the converted files.
func writeReport(dir string, report *Report) error {
	path := filepath.Join(dir, "run_"+report.RunID+".txt")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "run:       %s\n", report.RunID)
	fmt.Fprintf(f, "started:   %s\n", report.Started.Format(time.RFC3339))
	fmt.Fprintf(f, "elapsed:   %s\n", report.Elapsed)
	fmt.Fprintf(f, "succeeded: %d\n", report.Succeeded)
	fmt.Fprintf(f, "failed:    %d\n", report.Failed)
	fmt.Fprintf(f, "records:   %d\n\n", report.TotalRecords)
	for _, r := range report.Results {
		if r.Err != nil {
			fmt.Fprintf(f, "FAIL %s: %v\n", r.Source, r.Err)
			continue
		}
		fmt.Fprintf(f, "OK   %s -> %s (%d records)\n", r.Source, r.Output, r.Records)
	}
	return nil
}
