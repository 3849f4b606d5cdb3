package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/pdfoutline/internal/outline"
)

// BatchConfig describes one directory run.
type BatchConfig struct {
	InputDir   string
	OutputDir  string
	Extensions []string // lowercase, with leading dot
	Workers    int

	// FailFast aborts the run at the first failing document. Otherwise
	// failures are logged and the remaining documents are still processed.
	FailFast bool

	// OnFileDone, if set, is called after each document finishes. Calls are
	// serialized.
	OnFileDone func(FileResult)
}

// FileResult is the outcome for one input document.
type FileResult struct {
	Input    string
	Output   string
	Entries  int
	Duration time.Duration
	Err      error
}

// Summary reports a finished batch run.
type Summary struct {
	Processed int
	Failed    int
	Files     []FileResult
}

// Batch writes one outline JSON file per matching document in a directory.
type Batch struct {
	proc *Processor
	log  *slog.Logger
	cfg  BatchConfig
}

func NewBatch(proc *Processor, log *slog.Logger, cfg BatchConfig) *Batch {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".pdf"}
	}
	return &Batch{proc: proc, log: log, cfg: cfg}
}

// ListInputs returns the matching documents in the input directory, sorted
// by name. Extensions match case-insensitively.
func (b *Batch) ListInputs() ([]string, error) {
	entries, err := os.ReadDir(b.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if b.matches(e.Name()) {
			paths = append(paths, filepath.Join(b.cfg.InputDir, e.Name()))
		}
	}
	return paths, nil
}

func (b *Batch) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range b.cfg.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// OutputPath maps an input document to its JSON file in the output directory.
func (b *Batch) OutputPath(input string) string {
	base := filepath.Base(input)
	return filepath.Join(b.cfg.OutputDir, strings.TrimSuffix(base, filepath.Ext(base))+".json")
}

// Run processes every matching document. With FailFast the first failure is
// returned and documents not yet started are skipped.
func (b *Batch) Run(ctx context.Context) (Summary, error) {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return Summary{}, fmt.Errorf("create output dir: %w", err)
	}
	inputs, err := b.ListInputs()
	if err != nil {
		return Summary{}, err
	}
	return b.RunFiles(ctx, inputs)
}

// RunFiles processes the given documents, writing results to the output directory.
func (b *Batch) RunFiles(ctx context.Context, inputs []string) (Summary, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]FileResult, len(inputs))
	done := make([]bool, len(inputs))
	var firstErr error
	var mu sync.Mutex

	idx := make(chan int)
	var wg sync.WaitGroup
	for range min(b.cfg.Workers, max(len(inputs), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				if runCtx.Err() != nil {
					continue
				}
				r := b.processOne(inputs[i])

				mu.Lock()
				results[i] = r
				done[i] = true
				if r.Err != nil && b.cfg.FailFast && firstErr == nil {
					firstErr = r.Err
					cancel()
				}
				if b.cfg.OnFileDone != nil {
					b.cfg.OnFileDone(r)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i := range inputs {
		select {
		case <-runCtx.Done():
			break feed
		case idx <- i:
		}
	}
	close(idx)
	wg.Wait()

	var sum Summary
	for i, r := range results {
		if !done[i] {
			continue
		}
		sum.Files = append(sum.Files, r)
		if r.Err != nil {
			sum.Failed++
		} else {
			sum.Processed++
		}
	}

	if firstErr != nil {
		return sum, firstErr
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}

func (b *Batch) processOne(input string) FileResult {
	name := filepath.Base(input)
	log := b.log.With("file", name)
	out := b.OutputPath(input)

	start := time.Now()
	log.Info("processing", "started_at", start.Format(time.RFC3339Nano))

	res, err := b.proc.ProcessFile(input)
	if err == nil {
		err = writeResult(out, res)
	}
	fr := FileResult{Input: input, Output: out, Duration: time.Since(start), Err: err}
	if err != nil {
		log.Error("outline failed", "error", err, "duration_ms", fr.Duration.Milliseconds())
		return fr
	}

	fr.Entries = len(res.Outline)
	log.Info("saved",
		"output", out,
		"title", res.Title,
		"entries", fr.Entries,
		"finished_at", time.Now().Format(time.RFC3339Nano),
		"duration_ms", fr.Duration.Milliseconds(),
	)
	return fr
}

// writeResult writes the outline atomically: readers never see a partial file.
func writeResult(path string, res outline.Result) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if err := outline.Encode(tmp, res); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// Errors joins the per-file errors of a summary.
func (s Summary) Errors() error {
	var errs []error
	for _, f := range s.Files {
		if f.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(f.Input), f.Err))
		}
	}
	return errors.Join(errs...)
}
