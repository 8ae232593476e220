package ingest

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobKind selects what a job ingests.
type JobKind string

const (
	KindSection JobKind = "section" // fetch a WordPress documentation section
	KindFile    JobKind = "file"    // one uploaded local file
)

// JobStatus represents the state of an ingestion job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusFetching  JobStatus = "fetching"
	StatusChunking  JobStatus = "chunking"
	StatusEmbedding JobStatus = "embedding"
	StatusStoring   JobStatus = "storing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the state of a single ingestion run.
type Job struct {
	mu sync.Mutex

	ID   string  `json:"job_id"`
	Kind JobKind `json:"kind"`

	// Section jobs.
	Section string `json:"section,omitempty"`

	// File jobs.
	Filename string `json:"filename,omitempty"`
	Title    string `json:"title,omitempty"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalDocs      int      `json:"total_docs"`
	DocsProcessed  int      `json:"docs_processed"`
	DocsSkipped    int      `json:"docs_skipped"`
	ChunksProduced int      `json:"chunks_produced"`
	ChunksStored   int      `json:"chunks_stored"`
	Errors         []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalDocs records the number of documents to process.
func (j *Job) SetTotalDocs(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalDocs = n
	j.UpdatedAt = time.Now()
}

// IncrDocsProcessed atomically increments processed documents.
func (j *Job) IncrDocsProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocsProcessed++
	j.UpdatedAt = time.Now()
}

// IncrDocsSkipped counts documents with no content after normalization.
func (j *Job) IncrDocsSkipped() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocsSkipped++
	j.UpdatedAt = time.Now()
}

// AddChunks records produced and stored chunk counts.
func (j *Job) AddChunks(produced, stored int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ChunksProduced += produced
	j.Progress.ChunksStored += stored
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Kind     JobKind   `json:"kind"`
	Section  string    `json:"section,omitempty"`
	Filename string    `json:"filename,omitempty"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:       j.ID,
		Kind:     j.Kind,
		Section:  j.Section,
		Filename: j.Filename,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: Progress{
			TotalDocs:      j.Progress.TotalDocs,
			DocsProcessed:  j.Progress.DocsProcessed,
			DocsSkipped:    j.Progress.DocsSkipped,
			ChunksProduced: j.Progress.ChunksProduced,
			ChunksStored:   j.Progress.ChunksStored,
			Errors:         errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns it hex encoded.
// File jobs use it to derive stable document ids.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
