package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "./archive", cfg.ArchiveDir)
	assert.Equal(t, "marc", cfg.From)
	assert.Equal(t, "csv", cfg.To)
	assert.False(t, cfg.HTMLEntities)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	require.NotNil(t, cfg.ContinueOnError)
	assert.True(t, *cfg.ContinueOnError)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "input_dir: " + filepath.Join(dir, "in") + "\n" +
		"output_dir: " + filepath.Join(dir, "out") + "\n" +
		"archive_dir: " + filepath.Join(dir, "done") + "\n" +
		"from: csv\n" +
		"to: xml\n" +
		"html_entities: true\n" +
		"continue_on_error: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.From)
	assert.Equal(t, "xml", cfg.To)
	assert.True(t, cfg.HTMLEntities)
	require.NotNil(t, cfg.ContinueOnError)
	assert.False(t, *cfg.ContinueOnError)

	// Validation creates missing directories.
	assert.DirExists(t, filepath.Join(dir, "in"))
	assert.DirExists(t, filepath.Join(dir, "out"))
	assert.DirExists(t, filepath.Join(dir, "done"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsUnknownFormats(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.InputDir = dir
	cfg.OutputDir = dir
	cfg.ArchiveDir = dir

	cfg.From = "pdf"
	assert.Error(t, Validate(cfg))

	cfg.From = "marc"
	cfg.To = "pdf"
	assert.Error(t, Validate(cfg))

	cfg.To = "xlsx"
	assert.NoError(t, Validate(cfg))
}
