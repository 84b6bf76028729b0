package poll

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fetchq/fetchq/internal/model"
)

// Poller fetches one status snapshot from the backend.
type Poller interface {
	PollStatus(ctx context.Context) (model.StatusSnapshot, error)
}

// Options configures the poll loop.
type Options struct {
	// Interval between poll cycles.
	// Default: 1s
	Interval time.Duration

	// OnChange is called after every reconciled snapshot, on the loop
	// goroutine. Optional.
	OnChange func()

	// OnTransportError is called once when a poll cycle fails and the loop
	// terminates. The loop does not retry; it restarts only on the next
	// Start call. Optional.
	OnTransportError func(error)
}

// Loop repeatedly polls the status endpoint and reconciles the results.
//
// Start is idempotent: while one loop goroutine is active, further Start
// calls are no-ops, so any number of call sites (initial attach, new-job
// notifications) can safely try to start it.
type Loop struct {
	poller     Poller
	reconciler *Reconciler
	opts       Options

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewLoop creates an idle loop.
func NewLoop(poller Poller, reconciler *Reconciler, opts Options) *Loop {
	if opts.Interval == 0 {
		opts.Interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		poller:     poller,
		reconciler: reconciler,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the loop unless one is already running or the loop has
// been closed.
func (l *Loop) Start() {
	if l.ctx.Err() != nil {
		return
	}
	// The guard flips before the first request goes out and is cleared on
	// every exit path of run.
	if !l.running.CompareAndSwap(false, true) {
		return
	}

	l.wg.Add(1)
	go l.run()
}

// Running reports whether a loop goroutine is currently active.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Close terminates any active loop and prevents future starts. It blocks
// until the loop goroutine has exited.
func (l *Loop) Close() {
	l.cancel()
	l.wg.Wait()
}

func (l *Loop) run() {
	defer l.wg.Done()
	defer l.running.Store(false)

	for {
		snapshot, err := l.poller.PollStatus(l.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("poll: terminating after transport error: %v", err)
			if l.opts.OnTransportError != nil {
				l.opts.OnTransportError(err)
			}
			return
		}

		continuePolling := l.reconciler.Reconcile(snapshot)
		if l.opts.OnChange != nil {
			l.opts.OnChange()
		}
		if !continuePolling {
			return
		}

		select {
		case <-l.ctx.Done():
			return
		case <-time.After(l.opts.Interval):
		}
	}
}
