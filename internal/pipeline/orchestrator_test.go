package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitForStatus(t *testing.T, job *Job, want JobStatus) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := job.Snapshot()
		if snap.Status == want {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach status %q (last %q)", job.ID, want, job.Snapshot().Status)
	return JobSnapshot{}
}

func TestOrchestrator_ProcessesJobs(t *testing.T) {
	orch := NewOrchestrator(newTestProcessor(), discardLogger(), 2, 10, time.Hour)
	orch.Start(context.Background())
	defer orch.Stop()

	job := NewJob("report.md", []byte(sampleMarkdown))
	if err := orch.Submit(job); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	snap := waitForStatus(t, job, StatusCompleted)
	if snap.Result == nil || snap.Result.Title != "Annual Report" {
		t.Errorf("expected title %q, got %+v", "Annual Report", snap.Result)
	}
	if orch.GetJob(job.ID) != job {
		t.Error("expected job to be retrievable by ID")
	}
	if orch.JobCount() != 1 {
		t.Errorf("expected 1 tracked job, got %d", orch.JobCount())
	}
}

func TestOrchestrator_FailedJob(t *testing.T) {
	orch := NewOrchestrator(newTestProcessor(), discardLogger(), 1, 10, time.Hour)
	orch.Start(context.Background())
	defer orch.Stop()

	job := NewJob("broken.pdf", []byte("not a pdf"))
	if err := orch.Submit(job); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	snap := waitForStatus(t, job, StatusFailed)
	if snap.Phase != "parsing" {
		t.Errorf("expected phase %q, got %q", "parsing", snap.Phase)
	}
	if len(snap.Errors) == 0 {
		t.Error("expected an error message")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// Not started: nothing drains the queue.
	orch := NewOrchestrator(newTestProcessor(), discardLogger(), 1, 1, time.Hour)

	if err := orch.Submit(NewJob("a.md", nil)); err != nil {
		t.Fatalf("unexpected error on first submit: %v", err)
	}
	overflow := NewJob("b.md", nil)
	if err := orch.Submit(overflow); err == nil {
		t.Fatal("expected queue full error")
	}
	if overflow.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to be failed, got %q", overflow.Snapshot().Status)
	}
	if orch.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", orch.QueueDepth())
	}
}

func TestWorker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := NewJob("a.md", []byte("# A\n"))
	NewWorker(newTestProcessor(), discardLogger()).Process(ctx, job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "queued" {
		t.Errorf("expected failed/queued, got %s/%s", snap.Status, snap.Phase)
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	orch := NewOrchestrator(newTestProcessor(), discardLogger(), 1, 10, time.Hour)
	orch.Start(context.Background())
	orch.Stop()

	job := NewJob("late.md", []byte("# Late\n"))
	if err := orch.Submit(job); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "queued" {
		t.Errorf("expected failed/queued, got %s/%s", snap.Status, snap.Phase)
	}
	// Stop is idempotent.
	orch.Stop()
}
