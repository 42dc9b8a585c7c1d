package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// FailedFile records a corpus file that could not be processed
type FailedFile struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// RunManifest describes one extraction run
type RunManifest struct {
	ID          string       `json:"id"`
	Task        string       `json:"task"`
	Input       string       `json:"input"`
	Output      string       `json:"output"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Files       int          `json:"files"`
	Filtered    int          `json:"filtered"`
	Rows        int          `json:"rows"`
	Speeches    int          `json:"speeches"`
	Unknown     int          `json:"unknown_speakers"`
	FailedFiles []FailedFile `json:"failed_files,omitempty"`
}

// NewRunManifest starts a manifest with a fresh run id
func NewRunManifest(task, input, output string) *RunManifest {
	return &RunManifest{
		ID:        uuid.New().String(),
		Task:      task,
		Input:     input,
		Output:    output,
		StartedAt: time.Now().UTC(),
	}
}

// Record adds the outcome of one file
func (m *RunManifest) Record(path string, report *FileReport, err error) {
	m.Files++
	if err != nil {
		m.FailedFiles = append(m.FailedFiles, FailedFile{Path: path, Error: err.Error()})
		return
	}
	if report.Filtered {
		m.Filtered++
		return
	}
	m.Rows += len(report.Rows)
	m.Speeches += report.Speeches
	m.Unknown += report.Unknown
}

// Finish stamps the end time
func (m *RunManifest) Finish() {
	m.FinishedAt = time.Now().UTC()
}

// Write stores the manifest as indented JSON
func (m *RunManifest) Write(path string) error {
	data, err := sonic.ConfigStd.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
