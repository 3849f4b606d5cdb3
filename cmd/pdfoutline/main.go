// Command pdfoutline writes a JSON outline for every document in a directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dgallion1/pdfoutline/internal/config"
	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/parser"
	"github.com/dgallion1/pdfoutline/internal/pipeline"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

type flags struct {
	configPath string
	input      string
	output     string
	workers    int
	failFast   bool
	progress   bool

	set map[string]bool // flags given on the command line
}

func main() {
	f, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.LoadFrom(f.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	f.apply(&cfg)

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := run(ctx, cfg, f.progress, log)
	if err != nil {
		log.Error("batch failed", "error", err)
	}
	printSummary(sum)
	if err != nil || sum.Failed > 0 {
		os.Exit(1)
	}
}

const failFastUsage = "Stop at the first failing document and exit 1 (overrides FAIL_FAST). " +
	"By default a failing document is logged, the rest are still processed, and the exit status is 1 if any failed"

func parseFlags(fs *flag.FlagSet, args []string) (flags, error) {
	var f flags
	fs.StringVar(&f.configPath, "config", os.Getenv("CONFIG_FILE"), "Path to YAML config file")
	fs.StringVar(&f.input, "input", "", "Input directory (overrides INPUT_DIR)")
	fs.StringVar(&f.output, "output", "", "Output directory (overrides OUTPUT_DIR)")
	fs.IntVar(&f.workers, "workers", 0, "Concurrent documents (overrides WORKER_COUNT)")
	fs.BoolVar(&f.failFast, "fail-fast", false, failFastUsage)
	fs.BoolVar(&f.progress, "progress", false, "Show a progress bar on stderr")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// apply overrides cfg with the flags given on the command line.
func (f flags) apply(cfg *config.Config) {
	if f.set["input"] {
		cfg.InputDir = f.input
	}
	if f.set["output"] {
		cfg.OutputDir = f.output
	}
	if f.set["workers"] && f.workers > 0 {
		cfg.WorkerCount = f.workers
	}
	if f.set["fail-fast"] {
		cfg.FailFast = f.failFast
	}
}

func run(ctx context.Context, cfg config.Config, showProgress bool, log *slog.Logger) (pipeline.Summary, error) {
	proc := pipeline.NewProcessor(
		parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		outline.Options{MaxHeadingWords: cfg.MaxHeadingWords, SizeTolerance: cfg.SizeTolerance},
		nil,
	)

	bcfg := pipeline.BatchConfig{
		InputDir:   cfg.InputDir,
		OutputDir:  cfg.OutputDir,
		Extensions: cfg.Extensions,
		Workers:    cfg.WorkerCount,
		FailFast:   cfg.FailFast,
	}

	if showProgress {
		inputs, err := pipeline.NewBatch(proc, log, bcfg).ListInputs()
		if err != nil {
			return pipeline.Summary{}, err
		}
		bar := getProgressBar(len(inputs), "Extracting outlines")
		bcfg.OnFileDone = func(pipeline.FileResult) { bar.Add(1) }
		defer bar.Finish()
	}

	log.Info("starting batch",
		"input_dir", cfg.InputDir,
		"output_dir", cfg.OutputDir,
		"extensions", cfg.Extensions,
		"workers", cfg.WorkerCount,
		"fail_fast", cfg.FailFast,
	)
	return pipeline.NewBatch(proc, log, bcfg).Run(ctx)
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func printSummary(sum pipeline.Summary) {
	out := color.Error
	if sum.Failed == 0 {
		color.New(color.FgGreen).Fprintf(out, "\n✓ Wrote %d outlines\n", sum.Processed)
		return
	}
	color.New(color.FgYellow).Fprintf(out, "\n! Wrote %d outlines, %d failed\n", sum.Processed, sum.Failed)
	for _, f := range sum.Files {
		if f.Err != nil {
			color.New(color.FgRed).Fprintf(out, "  %s: %v\n", filepath.Base(f.Input), f.Err)
		}
	}
}
