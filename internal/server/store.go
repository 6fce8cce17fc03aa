package server

import (
	"sync"
	"time"

	"github.com/femiolat/blastr/internal/models"
)

// SendJob tracks one in-flight or finished send job.
type SendJob struct {
	ID          string
	Message     string
	Personalize bool
	Targets     []models.Contact

	mu        sync.Mutex
	status    models.Status
	sent      int
	failed    int
	startedAt time.Time
	doneAt    time.Time
}

// Snapshot returns a point-in-time progress view of the job.
//
// Percent is derived from processed rows, so it reaches 100 only when every
// target has been attempted.
func (j *SendJob) Snapshot() models.Progress {
	j.mu.Lock()
	defer j.mu.Unlock()

	total := len(j.Targets)
	percent := 0
	if total > 0 {
		percent = (j.sent + j.failed) * 100 / total
	}

	return models.Progress{
		Status:  j.status,
		Percent: percent,
		Sent:    j.sent,
		Failed:  j.failed,
		Total:   total,
	}
}

func (j *SendJob) start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = models.StatusRunning
	j.startedAt = time.Now()
}

func (j *SendJob) markSent() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sent++
}

func (j *SendJob) markFailed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.failed++
}

// finish moves the job to its terminal status. A job where nothing went out
// ends failed; any delivered message counts as completion.
func (j *SendJob) finish() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.doneAt = time.Now()
	if j.sent == 0 && j.failed > 0 {
		j.status = models.StatusFailed
	} else {
		j.status = models.StatusCompleted
	}
}

// JobStore holds parse jobs and send jobs in memory, keyed by generated IDs.
// All methods are safe for concurrent use by HTTP handlers and the dispatcher.
type JobStore struct {
	mu       sync.RWMutex
	uploads  map[string][]models.Contact
	sendJobs map[string]*SendJob
}

// NewJobStore creates an empty JobStore.
func NewJobStore() *JobStore {
	return &JobStore{
		uploads:  map[string][]models.Contact{},
		sendJobs: map[string]*SendJob{},
	}
}

// PutUpload stores the parsed rows of an upload under jobID.
func (s *JobStore) PutUpload(jobID string, rows []models.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[jobID] = rows
}

// GetUpload returns the parsed rows for jobID.
func (s *JobStore) GetUpload(jobID string) ([]models.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.uploads[jobID]
	return rows, ok
}

// PutSendJob registers a new pending send job.
func (s *JobStore) PutSendJob(job *SendJob) {
	job.mu.Lock()
	job.status = models.StatusPending
	job.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendJobs[job.ID] = job
}

// GetSendJob returns the send job for sendJobID.
func (s *JobStore) GetSendJob(sendJobID string) (*SendJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.sendJobs[sendJobID]
	return job, ok
}
