package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"digital.vasic.verify/pkg/testcase"
)

// FileOutput buffers a report and writes it to its path on
// Close, holding an advisory lock so concurrent runs sharing
// an output path do not interleave. Readers never see a
// partial file.
type FileOutput struct {
	path string
	buf  bytes.Buffer
}

// NewFileOutput creates a FileOutput for path.
func NewFileOutput(path string) *FileOutput {
	return &FileOutput{path: path}
}

// Write appends to the buffer.
func (f *FileOutput) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

// Path returns the destination path.
func (f *FileOutput) Path() string {
	return f.path
}

// Close writes the buffered report.
func (f *FileOutput) Close() error {
	return WriteLocked(f.path, f.buf.Bytes())
}

// WriteLocked writes data to path atomically while holding an
// exclusive lock on path + ".lock".
func WriteLocked(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	return AtomicWrite(path, data)
}

// AtomicWrite writes data to a temporary file in the target
// directory and renames it over path.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf(
			"failed to rename temp file to %s: %w", path, err,
		)
	}
	committed = true
	return nil
}

// SavedSummary lists the files written by SaveSummary.
type SavedSummary struct {
	JSON     string
	Markdown string
	HTML     string
}

// SaveSummary writes the summary of a run to outputDir as
// JSON, Markdown and HTML files stamped with the run's start
// time, and points latest_summary.* symlinks at them.
func SaveSummary(
	s *testcase.Summary,
	outputDir string,
) (*SavedSummary, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	ts := s.StartTime.Format("20060102_150405")
	saved := &SavedSummary{
		JSON:     filepath.Join(outputDir, "summary_"+ts+".json"),
		Markdown: filepath.Join(outputDir, "summary_"+ts+".md"),
		HTML:     filepath.Join(outputDir, "summary_"+ts+".html"),
	}

	jsonData, err := MarshalSummary(s, true, false)
	if err != nil {
		return nil, err
	}
	htmlData, err := GenerateHTML(s)
	if err != nil {
		return nil, err
	}

	files := []struct {
		path   string
		data   []byte
		latest string
	}{
		{saved.JSON, jsonData, "latest_summary.json"},
		{saved.Markdown, []byte(GenerateMarkdown(s)), "latest_summary.md"},
		{saved.HTML, htmlData, "latest_summary.html"},
	}
	for _, f := range files {
		if err := WriteLocked(f.path, f.data); err != nil {
			return nil, fmt.Errorf(
				"failed to write %s: %w",
				filepath.Base(f.path), err,
			)
		}
		latest := filepath.Join(outputDir, f.latest)
		_ = os.Remove(latest)
		_ = os.Symlink(filepath.Base(f.path), latest)
	}

	return saved, nil
}
