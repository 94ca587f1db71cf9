package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrmayo/gomarc/internal/config"
	"github.com/andrmayo/gomarc/pkg/marc"
)

func sampleRecord() *marc.Record {
	rec := marc.NewRecord()
	rec.AddField(marc.NewControlField("001", "ocm12345"))
	rec.AddField(marc.NewDataField("245", marc.NewIndicators("1", "0"),
		marc.Subfield{Code: "a", Value: "Python"},
		marc.Subfield{Code: "c", Value: "Guido"},
	))
	return rec
}

// writeSampleMARC writes one transmission format file and returns its path.
func writeSampleMARC(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := marc.EncodeTransmission(sampleRecord())
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestConvertFile_MARCToCSVAndBack(t *testing.T) {
	dir := t.TempDir()
	src := writeSampleMARC(t, dir, "records.dat")

	csvPath := filepath.Join(dir, "records.csv")
	count, err := ConvertFile(src, csvPath, Options{From: "marc", To: "csv"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	datPath := filepath.Join(dir, "roundtrip.dat")
	count, err = ConvertFile(csvPath, datPath, Options{From: "csv", To: "marc"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	f, err := os.Open(datPath)
	require.NoError(t, err)
	defer f.Close()

	recs, err := marc.NewMARCReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, sampleRecord().Fields(), recs[0].Fields())
}

func TestConvertFile_HTMLEntities(t *testing.T) {
	dir := t.TempDir()

	rec := marc.NewRecord()
	rec.AddField(marc.NewDataField("245", marc.NewIndicators("1", "0"),
		marc.Subfield{Code: "a", Value: "Café"},
	))
	data, err := marc.EncodeTransmission(rec)
	require.NoError(t, err)
	src := filepath.Join(dir, "records.dat")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	out := filepath.Join(dir, "records.txt")
	_, err = ConvertFile(src, out, Options{From: "marc", To: "text", HTMLEntities: true})
	require.NoError(t, err)

	text, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(text), "Caf&eacute;")
}

func TestConvertFile_UnknownFormats(t *testing.T) {
	dir := t.TempDir()
	src := writeSampleMARC(t, dir, "records.dat")

	_, err := ConvertFile(src, filepath.Join(dir, "out"), Options{From: "pdf", To: "csv"})
	assert.Error(t, err)

	_, err = ConvertFile(src, filepath.Join(dir, "out"), Options{From: "marc", To: "pdf"})
	assert.Error(t, err)
}

func TestWriteRecords_AllFormats(t *testing.T) {
	records := []*marc.Record{sampleRecord()}
	for _, format := range config.OutputFormats {
		var buf bytes.Buffer
		err := WriteRecords(&buf, records, Options{From: "marc", To: format})
		require.NoError(t, err, "format %s", format)
		assert.NotZero(t, buf.Len(), "format %s produced no output", format)
	}
}

func batchConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.InputDir = filepath.Join(dir, "in")
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.ArchiveDir = filepath.Join(dir, "done")
	require.NoError(t, config.Validate(cfg))
	return cfg
}

func TestRun_ConvertsAndArchives(t *testing.T) {
	cfg := batchConfig(t)
	writeSampleMARC(t, cfg.InputDir, "a.dat")
	writeSampleMARC(t, cfg.InputDir, "b.mrc")

	report, err := Run(cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.Equal(t, 2, report.TotalRecords)

	assert.FileExists(t, filepath.Join(cfg.OutputDir, "a.csv"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "b.csv"))

	// Sources are archived, and a run report is written.
	assert.NoFileExists(t, filepath.Join(cfg.InputDir, "a.dat"))
	assert.FileExists(t, filepath.Join(cfg.ArchiveDir, "a.dat"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "run_"+report.RunID+".txt"))
}

func TestRun_ContinuesOnError(t *testing.T) {
	cfg := batchConfig(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(cfg.InputDir, "bad.dat"), []byte("not a record"), 0o644))
	writeSampleMARC(t, cfg.InputDir, "good.dat")

	report, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "good.csv"))
}

func TestRun_IgnoresUnrelatedFiles(t *testing.T) {
	cfg := batchConfig(t)
	writeSampleMARC(t, cfg.InputDir, "a.dat")
	require.NoError(t, os.WriteFile(
		filepath.Join(cfg.InputDir, "notes.txt"), []byte("ignore me"), 0o644))

	report, err := Run(cfg)
	require.NoError(t, err)
	assert.Len(t, report.Results, 1)
}
