package download

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fetchq/fetchq/internal/event"
	"github.com/fetchq/fetchq/internal/model"
	"github.com/fetchq/fetchq/internal/poll"
	"github.com/fetchq/fetchq/internal/registry"
)

// Options configures the coordinator.
type Options struct {
	// PollInterval between status polls.
	// Default: 1s
	PollInterval time.Duration

	// OnTransportError is called once each time the poll loop dies on a
	// network failure, for surfacing a user-visible notification. Optional.
	OnTransportError func(error)
}

// Service coordinates download submissions and status tracking. It owns the
// registry, the notification bus, and the poll loop's lifecycle.
type Service struct {
	backend  Backend
	registry *registry.Registry
	bus      *event.Bus
	loop     *poll.Loop
	busSub   *event.Subscription
	onUpdate func() // callback for UI updates
}

// NewService creates a coordinator around the given backend. The poll loop
// starts idle; it wakes on the first submission or an explicit StartPolling.
func NewService(backend Backend, opts Options) *Service {
	s := &Service{
		backend:  backend,
		registry: registry.New(),
		bus:      event.NewBus(),
	}

	s.loop = poll.NewLoop(backend, poll.NewReconciler(s.registry), poll.Options{
		Interval:         opts.PollInterval,
		OnChange:         s.notifyUpdate,
		OnTransportError: opts.OnTransportError,
	})

	// Every new-job announcement nudges the loop; starting is idempotent,
	// so bursts of submissions collapse into one active loop.
	s.busSub = s.bus.Subscribe(func(event.JobQueued) {
		s.loop.Start()
	})

	return s
}

// SetUpdateCallback sets the callback invoked whenever the registry changes.
func (s *Service) SetUpdateCallback(callback func()) {
	s.onUpdate = callback
}

// Submit forwards the request to the backend and tracks the acknowledged
// job. The provisional Queued record is inserted before the new-job event is
// published, so by the time the first poll response arrives the caller
// already renders a placeholder row.
func (s *Service) Submit(ctx context.Context, req model.DownloadRequest) (model.DownloadJob, error) {
	if req.URL == "" {
		return model.DownloadJob{}, fmt.Errorf("submit: url is required")
	}
	if req.Filename == "" {
		return model.DownloadJob{}, fmt.Errorf("submit: filename is required")
	}

	ack, err := s.backend.SubmitDownload(ctx, req)
	if err != nil {
		return model.DownloadJob{}, fmt.Errorf("submit %q: %w", req.Filename, err)
	}

	id := ack.ID
	if id == "" {
		// Backend created the job without an id echo; assign one so the
		// record is addressable until a snapshot names it.
		id = uuid.NewString()
	}
	filename := ack.Filename
	if filename == "" {
		filename = req.Filename
	}

	s.registry.Upsert(model.JobUpdate{ID: id, Filename: filename})
	s.notifyUpdate()
	s.bus.Publish(event.JobQueued{ID: id, Filename: filename})

	job, _ := s.registry.Get(id)
	return job, nil
}

// Jobs returns all tracked jobs, newest first.
func (s *Service) Jobs() []model.DownloadJob {
	return s.registry.All()
}

// Job returns one tracked job by id.
func (s *Service) Job(id string) (model.DownloadJob, bool) {
	return s.registry.Get(id)
}

// HasLiveJobs reports whether any tracked job is not yet terminal.
func (s *Service) HasLiveJobs() bool {
	return s.registry.HasLiveJobs()
}

// Remove drops a job from the registry. Later snapshots mentioning the id
// are ignored for the rest of the session.
func (s *Service) Remove(id string) {
	s.registry.Remove(id)
	s.notifyUpdate()
}

// ClearAll drops every tracked job.
func (s *Service) ClearAll() {
	s.registry.Clear()
	s.notifyUpdate()
}

// SubscribeNewJobs registers fn for new-job announcements.
func (s *Service) SubscribeNewJobs(fn func(event.JobQueued)) *event.Subscription {
	return s.bus.Subscribe(fn)
}

// StartPolling wakes the poll loop without submitting anything, for
// attaching to a backend that is already busy. No-op while a loop runs.
func (s *Service) StartPolling() {
	s.loop.Start()
}

// Polling reports whether the poll loop is currently active.
func (s *Service) Polling() bool {
	return s.loop.Running()
}

// Close tears the coordinator down: the bus subscription is cancelled and
// the poll loop stops and will not re-arm.
func (s *Service) Close() {
	s.busSub.Cancel()
	s.loop.Close()
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}
