package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trustlens/trustlens/internal/assessor"
	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/metrics"
)

var (
	ErrEmptyBatch    = errors.New("app: batch has no urls")
	ErrBatchTooLarge = errors.New("app: batch too large")
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Processed int `json:"processed,omitempty"`
	Total     int `json:"total,omitempty"`

	// For results
	Item *BatchItem `json:"item,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// BatchItem is the outcome for one URL of a batch.
type BatchItem struct {
	Index      int               `json:"index"`
	URL        string            `json:"url"`
	ReportID   string            `json:"report_id,omitempty"`
	FinalScore float64           `json:"final_score,omitempty"`
	RiskTier   assessor.RiskTier `json:"risk_tier,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Job is a batch analysis. Values returned by the Service are snapshots;
// Events is shared and closed once the job finishes.
type Job struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Status    JobStatus   `json:"status"`
	Error     string      `json:"error,omitempty"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   *time.Time  `json:"ended_at,omitempty"`
	Processed int         `json:"processed"`
	Failed    int         `json:"failed"`
	Total     int         `json:"total"`
	Items     []BatchItem `json:"items"`

	Events chan JobEvent `json:"-"`
}

func (j *Job) snapshot() *Job {
	cp := *j
	cp.Items = append([]BatchItem(nil), j.Items...)
	if j.EndedAt != nil {
		t := *j.EndedAt
		cp.EndedAt = &t
	}
	return &cp
}

func (j *Job) finished() bool {
	return j.Status == JobDone || j.Status == JobFailed || j.Status == JobCanceled
}

type analyzeFunc func(ctx context.Context, rawURL string) BatchItem

type jobRegistry struct {
	cfg     BatchConfig
	logger  logging.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	jobs    map[string]*Job
	cancels map[string]context.CancelFunc
	closed  bool
	wg      sync.WaitGroup
}

func newJobRegistry(cfg BatchConfig, logger logging.Logger) *jobRegistry {
	return &jobRegistry{
		cfg:     cfg,
		logger:  logger,
		jobs:    make(map[string]*Job),
		cancels: make(map[string]context.CancelFunc),
	}
}

// StartBatch analyses urls in the background. The job outlives ctx's
// cancellation but keeps its values; use CancelBatch to stop it.
func (s *Service) StartBatch(ctx context.Context, urls []string) (*Job, error) {
	if len(urls) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(urls) > s.cfg.Batch.MaxURLs {
		return nil, fmt.Errorf("%w: %d urls (max %d)", ErrBatchTooLarge, len(urls), s.cfg.Batch.MaxURLs)
	}
	return s.jobs.start(ctx, urls, s.analyzeItem)
}

// GetBatch returns a snapshot of the job, or nil when it is unknown.
func (s *Service) GetBatch(id string) *Job {
	return s.jobs.get(id)
}

// ListBatches returns snapshots of all retained jobs, newest first.
func (s *Service) ListBatches() []*Job {
	return s.jobs.list()
}

// CancelBatch stops a running job. It reports whether a running job was found.
func (s *Service) CancelBatch(id string) bool {
	return s.jobs.cancel(id)
}

func (s *Service) analyzeItem(ctx context.Context, rawURL string) BatchItem {
	item := BatchItem{URL: rawURL}
	report, err := s.Analyze(ctx, rawURL)
	if err != nil {
		item.Error = err.Error()
		return item
	}
	item.URL = report.URL
	item.ReportID = report.ID
	item.FinalScore = report.Result.FinalScore
	item.RiskTier = report.Result.RiskTier
	return item
}

func (r *jobRegistry) start(ctx context.Context, urls []string, analyze analyzeFunc) (*Job, error) {
	jobID := uuid.New().String()
	now := time.Now().UTC()

	items := make([]BatchItem, len(urls))
	for i, u := range urls {
		items[i] = BatchItem{Index: i, URL: u}
	}
	job := &Job{
		ID:        jobID,
		Type:      "batch",
		Status:    JobPending,
		StartedAt: now,
		Total:     len(urls),
		Items:     items,
		// Room for every event a job can emit, so none is dropped.
		Events: make(chan JobEvent, 2*len(urls)+4),
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	r.pruneLocked(now)
	r.jobs[jobID] = job
	r.cancels[jobID] = cancel
	r.wg.Add(1)
	snap := job.snapshot()
	r.mu.Unlock()

	r.emit(job, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})

	go r.run(jobCtx, job, urls, analyze)

	return snap, nil
}

func (r *jobRegistry) run(ctx context.Context, job *Job, urls []string, analyze analyzeFunc) {
	logger := r.logger.With(logging.F("job_id", job.ID))
	defer func() {
		r.mu.Lock()
		if c, ok := r.cancels[job.ID]; ok {
			c()
			delete(r.cancels, job.ID)
		}
		r.mu.Unlock()
		// Close events channel so websocket loop can terminate cleanly
		close(job.Events)
		r.wg.Done()
	}()

	r.setStatus(job, JobRunning, "")
	logger.Info("batch started", logging.F("total", len(urls)))

	sem := make(chan struct{}, max(1, r.cfg.MaxConcurrency))
	var wg sync.WaitGroup

loop:
	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break loop
		}
		wg.Add(1)
		go func(i int, u string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			item := analyze(ctx, u)
			item.Index = i
			r.record(job, item)
		}(i, u)
	}
	wg.Wait()

	r.mu.Lock()
	processed, failed := job.Processed, job.Failed
	r.mu.Unlock()

	switch {
	case ctx.Err() != nil:
		r.setStatus(job, JobCanceled, ctx.Err().Error())
	case failed == processed:
		r.setStatus(job, JobFailed, fmt.Sprintf("all %d urls failed", failed))
	default:
		r.setStatus(job, JobDone, "")
	}
	logger.Info("batch finished",
		logging.F("processed", processed),
		logging.F("failed", failed),
	)
}

func (r *jobRegistry) record(job *Job, item BatchItem) {
	r.mu.Lock()
	job.Items[item.Index] = item
	job.Processed++
	if item.Error != "" {
		job.Failed++
	}
	processed, total := job.Processed, job.Total
	r.mu.Unlock()

	r.emit(job, JobEvent{JobID: job.ID, Type: JobEventResult, Item: &item})
	r.emit(job, JobEvent{JobID: job.ID, Type: JobEventProgress, Processed: processed, Total: total})
}

func (r *jobRegistry) setStatus(job *Job, status JobStatus, errMsg string) {
	r.mu.Lock()
	job.Status = status
	job.Error = errMsg
	finished := job.finished()
	if finished {
		t := time.Now().UTC()
		job.EndedAt = &t
	}
	r.mu.Unlock()

	if finished {
		r.metrics.ObserveBatch(string(status))
	}

	r.emit(job, JobEvent{JobID: job.ID, Type: JobEventStatus, Status: status, Error: errMsg})
}

// emit is a non-blocking send; the event is dropped if the buffer is full.
func (r *jobRegistry) emit(job *Job, ev JobEvent) {
	select {
	case job.Events <- ev:
	default:
		r.logger.Debug("dropped job event", logging.F("job_id", job.ID), logging.F("type", string(ev.Type)))
	}
}

func (r *jobRegistry) get(id string) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil
	}
	return job.snapshot()
}

func (r *jobRegistry) list() []*Job {
	r.mu.Lock()
	r.pruneLocked(time.Now().UTC())
	out := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job.snapshot())
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func (r *jobRegistry) cancel(id string) bool {
	r.mu.Lock()
	c, ok := r.cancels[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	c()
	return true
}

// pruneLocked drops finished jobs older than the retention window.
func (r *jobRegistry) pruneLocked(now time.Time) {
	if r.cfg.JobRetention <= 0 {
		return
	}
	for id, job := range r.jobs {
		if job.EndedAt != nil && now.Sub(*job.EndedAt) > r.cfg.JobRetention {
			delete(r.jobs, id)
		}
	}
}

// close cancels every running job and waits for them. Safe to call twice.
func (r *jobRegistry) close() {
	r.mu.Lock()
	r.closed = true
	for _, c := range r.cancels {
		c()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
