package registry

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/fetchq/fetchq/internal/model"
)

// Registry is a keyed in-memory store of download jobs.
//
// Jobs removed by the user are tombstoned for the rest of the session:
// later snapshot updates or errors referencing a removed id are dropped
// instead of resurrecting the record.
type Registry struct {
	mu      sync.RWMutex
	jobs    map[string]*model.DownloadJob
	removed map[string]struct{}
	now     func() time.Time
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		jobs:    make(map[string]*model.DownloadJob),
		removed: make(map[string]struct{}),
		now:     time.Now,
	}
}

// Upsert merges a partial job record by id. Unknown ids are inserted as
// Queued; known ids have only the fields present in the update overwritten.
// A reported filesize advances a Queued job to InProgress. Terminal jobs
// are never modified.
func (r *Registry) Upsert(update model.JobUpdate) {
	if update.ID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, gone := r.removed[update.ID]; gone {
		return
	}

	now := r.now()
	job, exists := r.jobs[update.ID]
	if !exists {
		job = &model.DownloadJob{
			ID:        update.ID,
			Status:    model.JobStatusQueued,
			CreatedAt: now,
		}
		r.jobs[update.ID] = job
	}

	if job.Status.IsTerminal() {
		return
	}

	if update.Filename != "" {
		job.Filename = update.Filename
	}
	if update.Filesize != nil {
		// Transferred bytes never go backwards while the job is live.
		if job.Filesize == nil || *update.Filesize >= *job.Filesize {
			size := *update.Filesize
			job.Filesize = &size
		}
		if job.Status == model.JobStatusQueued {
			job.Status = model.JobStatusInProgress
		}
	}
	job.ModifiedAt = now
}

// AttachError marks a job as failed. The target id must already exist;
// errors for unknown or removed ids are dropped so a job the user removed
// mid-flight is never resurrected. Terminal jobs keep their state.
func (r *Registry) AttachError(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, gone := r.removed[id]; gone {
		return
	}

	job, exists := r.jobs[id]
	if !exists {
		log.Printf("registry: dropping error for unknown job %s: %s", id, message)
		return
	}
	if job.Status.IsTerminal() {
		return
	}

	job.Status = model.JobStatusErrored
	job.Error = message
	job.ModifiedAt = r.now()
}

// FinishAll advances every non-terminal job to Finished. Called when a
// snapshot reports that the backend has no more in-flight work.
func (r *Registry) FinishAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, job := range r.jobs {
		if job.Status.IsTerminal() {
			continue
		}
		job.Status = model.JobStatusFinished
		job.ModifiedAt = now
	}
}

// Remove deletes a job and tombstones its id for the rest of the session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.jobs, id)
	r.removed[id] = struct{}{}
}

// Clear deletes all jobs, tombstoning every current id.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.jobs {
		r.removed[id] = struct{}{}
	}
	r.jobs = make(map[string]*model.DownloadJob)
}

// Get returns a copy of the job with the given id.
func (r *Registry) Get(id string) (model.DownloadJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return model.DownloadJob{}, false
	}
	return *job, true
}

// All returns copies of every job, newest first. Finished jobs order by
// creation time, everything else by last change (see model.DownloadJob.SortKey).
func (r *Registry) All() []model.DownloadJob {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]model.DownloadJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, *job)
	}

	sort.Slice(jobs, func(i, j int) bool {
		ki, kj := jobs[i].SortKey(), jobs[j].SortKey()
		if ki.Equal(kj) {
			return jobs[i].ID < jobs[j].ID
		}
		return ki.After(kj)
	})
	return jobs
}

// Len returns the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// HasLiveJobs returns true if any tracked job is not yet terminal.
func (r *Registry) HasLiveJobs() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, job := range r.jobs {
		if !job.Status.IsTerminal() {
			return true
		}
	}
	return false
}
