package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fetchq/fetchq/internal/model"
	"github.com/fetchq/fetchq/internal/registry"
)

// fakePoller serves a scripted sequence of snapshots and tracks how many
// polls are in flight at once. The last snapshot repeats once the script
// runs out.
type fakePoller struct {
	mu        sync.Mutex
	script    []model.StatusSnapshot
	errs      []error
	gate      chan struct{} // if set, the first poll blocks until closed
	calls     int
	inFlight  atomic.Int32
	maxFlight atomic.Int32
}

func (p *fakePoller) PollStatus(ctx context.Context) (model.StatusSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.StatusSnapshot{}, err
	}

	p.mu.Lock()
	gate := p.gate
	p.gate = nil
	first := p.calls == 0
	p.mu.Unlock()
	if first && gate != nil {
		<-gate
	}

	n := p.inFlight.Add(1)
	for {
		max := p.maxFlight.Load()
		if n <= max || p.maxFlight.CompareAndSwap(max, n) {
			break
		}
	}
	// Hold the request open briefly so overlapping polls would be caught.
	time.Sleep(time.Millisecond)
	defer p.inFlight.Add(-1)

	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return model.StatusSnapshot{}, p.errs[i]
	}
	if i >= len(p.script) {
		i = len(p.script) - 1
	}
	return p.script[i], nil
}

func (p *fakePoller) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func waitForIdle(t *testing.T, loop *Loop) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for loop.Running() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for loop to go idle")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLoop_StartIsIdempotent(t *testing.T) {
	gate := make(chan struct{})
	poller := &fakePoller{
		script: []model.StatusSnapshot{
			{Finished: false},
			{Finished: false},
			{Finished: true},
		},
		gate: gate,
	}
	reg := registry.New()
	loop := NewLoop(poller, NewReconciler(reg), Options{Interval: time.Millisecond})
	defer loop.Close()

	// All starts land while the first poll is held open, so they must all
	// collapse into the single already-running loop.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop.Start()
		}()
	}
	wg.Wait()
	close(gate)
	waitForIdle(t, loop)

	if max := poller.maxFlight.Load(); max != 1 {
		t.Errorf("expected at most 1 in-flight poll, observed %d", max)
	}
	if calls := poller.callCount(); calls != 3 {
		t.Errorf("expected exactly 3 polls from a single loop, got %d", calls)
	}
}

func TestLoop_StopsOnFinishedUntilRestarted(t *testing.T) {
	size := int64(1000)
	poller := &fakePoller{script: []model.StatusSnapshot{
		{Finished: false, Updates: []model.JobUpdate{{ID: "a1", Filesize: &size}}},
		{Finished: true},
	}}
	reg := registry.New()
	loop := NewLoop(poller, NewReconciler(reg), Options{Interval: time.Millisecond})
	defer loop.Close()

	loop.Start()
	waitForIdle(t, loop)

	calls := poller.callCount()
	if calls != 2 {
		t.Fatalf("expected 2 polls before termination, got %d", calls)
	}

	// No further polls while idle.
	time.Sleep(20 * time.Millisecond)
	if poller.callCount() != calls {
		t.Error("idle loop must not issue further polls")
	}

	// A new-job trigger starts a fresh cycle.
	loop.Start()
	waitForIdle(t, loop)
	if poller.callCount() <= calls {
		t.Error("expected polling to resume after restart")
	}
}

func TestLoop_ScenarioA(t *testing.T) {
	size := int64(1000)
	poller := &fakePoller{script: []model.StatusSnapshot{
		{Finished: false, Updates: []model.JobUpdate{{ID: "a1", Filesize: &size}}},
		{Finished: true},
	}}
	reg := registry.New()
	reg.Upsert(model.JobUpdate{ID: "a1", Filename: "movie.mkv"})

	loop := NewLoop(poller, NewReconciler(reg), Options{Interval: time.Millisecond})
	defer loop.Close()

	loop.Start()
	waitForIdle(t, loop)

	job, ok := reg.Get("a1")
	if !ok {
		t.Fatal("expected job a1")
	}
	if job.Status != model.JobStatusFinished {
		t.Errorf("expected Finished, got %s", job.Status)
	}
	if job.Filename != "movie.mkv" {
		t.Errorf("expected filename movie.mkv, got %q", job.Filename)
	}
	if job.Filesize == nil || *job.Filesize != 1000 {
		t.Errorf("expected filesize 1000, got %v", job.Filesize)
	}
}

func TestLoop_TransportErrorTerminatesWithOneNotification(t *testing.T) {
	transportErr := errors.New("connection refused")
	poller := &fakePoller{
		script: []model.StatusSnapshot{{Finished: false}},
		errs:   []error{nil, transportErr},
	}
	reg := registry.New()
	reg.Upsert(model.JobUpdate{ID: "a1"})

	var notified atomic.Int32
	loop := NewLoop(poller, NewReconciler(reg), Options{
		Interval:         time.Millisecond,
		OnTransportError: func(err error) { notified.Add(1) },
	})
	defer loop.Close()

	loop.Start()
	waitForIdle(t, loop)

	if n := notified.Load(); n != 1 {
		t.Errorf("expected exactly one transport-error notification, got %d", n)
	}
	// Registry keeps its last-known-good state.
	if _, ok := reg.Get("a1"); !ok {
		t.Error("registry must be left untouched by a transport failure")
	}
	// No automatic retry.
	calls := poller.callCount()
	time.Sleep(20 * time.Millisecond)
	if poller.callCount() != calls {
		t.Error("loop must not retry after a transport error")
	}
}

func TestLoop_OnChangeFiresPerSnapshot(t *testing.T) {
	poller := &fakePoller{script: []model.StatusSnapshot{
		{Finished: false},
		{Finished: true},
	}}
	reg := registry.New()

	var changes atomic.Int32
	loop := NewLoop(poller, NewReconciler(reg), Options{
		Interval: time.Millisecond,
		OnChange: func() { changes.Add(1) },
	})
	defer loop.Close()

	loop.Start()
	waitForIdle(t, loop)

	if n := changes.Load(); n != 2 {
		t.Errorf("expected OnChange per reconciled snapshot (2), got %d", n)
	}
}

func TestLoop_CloseStopsAndPreventsRestart(t *testing.T) {
	poller := &fakePoller{script: []model.StatusSnapshot{{Finished: false}}}
	reg := registry.New()
	loop := NewLoop(poller, NewReconciler(reg), Options{Interval: time.Millisecond})

	loop.Start()
	loop.Close()

	if loop.Running() {
		t.Error("expected loop to be stopped after Close")
	}
	calls := poller.callCount()
	loop.Start()
	time.Sleep(10 * time.Millisecond)
	if poller.callCount() != calls {
		t.Error("closed loop must not re-arm")
	}
}
