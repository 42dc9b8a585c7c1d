package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/parlasf/internal/pipeline"
	"github.com/rs/zerolog/log"
)

// Processor defines the interface for processing one corpus file
type Processor interface {
	ProcessFile(ctx context.Context, path string) (*pipeline.FileReport, error)
}

// FileJob represents a corpus file processing job
type FileJob struct {
	Index     int
	Path      string
	Processor Processor
	onError   func(error)
}

// Execute executes the file job
func (j *FileJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &FileResult{Index: j.Index, Path: j.Path, Error: err, Skipped: true}
	}
	report, err := j.Processor.ProcessFile(ctx, j.Path)
	if err != nil {
		if j.onError != nil {
			j.onError(err)
		}
		return &FileResult{
			Index: j.Index,
			Path:  j.Path,
			Error: err,
		}
	}
	return &FileResult{
		Index:  j.Index,
		Path:   j.Path,
		Report: report,
	}
}

// FileResult represents the result of a file job
type FileResult struct {
	Index  int
	Path   string
	Report *pipeline.FileReport
	Error  error
	// Skipped is set for files never processed after a fail-fast cancellation
	Skipped bool
}

// GetError returns the error from the file result
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple corpus files concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
	failFast    bool
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int, failFast bool) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
		failFast:    failFast,
	}
}

// ProcessFiles processes the files concurrently. Results come back in input
// order regardless of completion order.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	var onError func(error)
	if b.failFast {
		onError = func(err error) {
			log.Warn().Err(err).Msg("fail-fast: cancelling remaining files")
			pool.Cancel()
		}
	}

	submitted := 0
	for i, path := range paths {
		job := &FileJob{
			Index:     i,
			Path:      path,
			Processor: b.processor,
			onError:   onError,
		}
		if !pool.Submit(job) {
			break
		}
		submitted++
	}

	results := pool.Wait()

	fileResults := make([]*FileResult, 0, len(paths))
	seen := make(map[int]bool, len(results))
	for _, result := range results {
		fr := result.(*FileResult)
		seen[fr.Index] = true
		fileResults = append(fileResults, fr)
	}
	// jobs dropped from the queue or never submitted
	for i, path := range paths {
		if !seen[i] {
			fileResults = append(fileResults, &FileResult{
				Index:   i,
				Path:    path,
				Error:   context.Canceled,
				Skipped: true,
			})
		}
	}
	sort.Slice(fileResults, func(i, j int) bool {
		return fileResults[i].Index < fileResults[j].Index
	})

	log.Debug().Int("files", len(paths)).Int("submitted", submitted).Msg("batch finished")
	return fileResults
}

// ReadPathList reads corpus file paths from a list file (one per line)
func ReadPathList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
