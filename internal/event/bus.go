package event

import "sync"

// JobQueued announces that a new download job was just created.
type JobQueued struct {
	ID       string
	Filename string
}

// Bus fans out JobQueued events to subscribers. Delivery is synchronous on
// the publisher's goroutine, so a subscriber observes the event after the
// publisher's preceding registry mutations.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(JobQueued)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(JobQueued))}
}

// Subscription identifies one subscriber and allows it to detach.
type Subscription struct {
	bus *Bus
	id  int
}

// Cancel detaches the subscriber. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.subs, s.id)
}

// Subscribe registers fn to be called on every published event.
func (b *Bus) Subscribe(fn func(JobQueued)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	return &Subscription{bus: b, id: id}
}

// Publish delivers the event to every current subscriber.
func (b *Bus) Publish(e JobQueued) {
	b.mu.Lock()
	fns := make([]func(JobQueued), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
