package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"time"
)

// Worker processes queued outline jobs.
type Worker struct {
	proc *Processor
	log  *slog.Logger
}

func NewWorker(proc *Processor, log *slog.Logger) *Worker {
	return &Worker{proc: proc, log: log}
}

// Process extracts the outline for a job and records the outcome on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file", job.Filename)

	if err := ctx.Err(); err != nil {
		job.Fail("queued", err)
		return
	}

	job.SetStatus(StatusParsing, "parsing")
	start := time.Now()
	res, err := w.proc.Process(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("outline failed", "error", err)
		job.Fail("parsing", err)
		return
	}

	job.Complete(res)
	log.Info("outline complete",
		"entries", len(res.Outline),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
