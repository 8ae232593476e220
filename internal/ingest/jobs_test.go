package ingest

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"codexrag/internal/llm"
	"codexrag/internal/wordpress"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	if ContentHashHex([]byte("aaa")) == ContentHashHex([]byte("bbb")) {
		t.Error("expected different hashes for different inputs")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Kind:      KindSection,
		Section:   "plugin",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusFetching, "fetching"},
		{StatusChunking, "chunking"},
		{StatusEmbedding, "embedding"},
		{StatusStoring, "storing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("embed batch at 0 failed")
	job.AddError("store batch failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "embed batch at 0 failed" {
		t.Errorf("expected first error %q, got %q", "embed batch at 0 failed", snap.Progress.Errors[0])
	}
}

func TestJob_ProgressCounters(t *testing.T) {
	job := &Job{ID: "progress-test", UpdatedAt: time.Now()}
	job.SetTotalDocs(3)
	job.IncrDocsProcessed()
	job.IncrDocsProcessed()
	job.IncrDocsSkipped()
	job.AddChunks(10, 0)
	job.AddChunks(0, 8)

	snap := job.Snapshot()
	if snap.Progress.TotalDocs != 3 {
		t.Errorf("expected 3 total docs, got %d", snap.Progress.TotalDocs)
	}
	if snap.Progress.DocsProcessed != 2 {
		t.Errorf("expected 2 processed docs, got %d", snap.Progress.DocsProcessed)
	}
	if snap.Progress.DocsSkipped != 1 {
		t.Errorf("expected 1 skipped doc, got %d", snap.Progress.DocsSkipped)
	}
	if snap.Progress.ChunksProduced != 10 || snap.Progress.ChunksStored != 8 {
		t.Errorf("expected 10 produced / 8 stored, got %d / %d",
			snap.Progress.ChunksProduced, snap.Progress.ChunksStored)
	}
}

func TestJob_SnapshotErrorsNeverNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("snapshot errors should be an empty slice, not nil")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "a", UpdatedAt: time.Now()}
	store.Put(job)

	if got := store.Get("a"); got != job {
		t.Error("expected stored job back")
	}
	if got := store.Get("missing"); got != nil {
		t.Errorf("expected nil for unknown id, got %v", got)
	}
}

func TestJobStore_CleanupEvictsExpired(t *testing.T) {
	store := NewJobStore(10 * time.Millisecond)
	stale := &Job{ID: "stale", UpdatedAt: time.Now().Add(-time.Minute)}
	fresh := &Job{ID: "fresh", UpdatedAt: time.Now()}
	store.Put(stale)
	store.Put(fresh)

	store.Cleanup()

	if store.Get("stale") != nil {
		t.Error("expected stale job to be evicted")
	}
	if store.Get("fresh") == nil {
		t.Error("expected fresh job to survive")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(&wordpress.RetryableError{StatusCode: 503}) {
		t.Error("wordpress transient error should be retryable")
	}
	if !IsRetryable(fmt.Errorf("wrapped: %w", &llm.RetryableError{StatusCode: 429})) {
		t.Error("wrapped llm transient error should be retryable")
	}
	if IsRetryable(errors.New("permanent")) {
		t.Error("generic error should not be retryable")
	}
}

func TestBackoff_GrowsAndCaps(t *testing.T) {
	for attempt := 0; attempt < MaxRetries; attempt++ {
		d := Backoff(attempt)
		base := time.Duration(1<<uint(attempt)) * time.Second
		if d < base {
			t.Errorf("attempt %d: backoff %v below base %v", attempt, d, base)
		}
		if d > base+base/2 {
			t.Errorf("attempt %d: backoff %v exceeds base plus jitter", attempt, d)
		}
	}
	if d := Backoff(10); d > 45*time.Second {
		t.Errorf("expected cap near 30s plus jitter, got %v", d)
	}
}
