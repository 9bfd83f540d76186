package audio

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// releaser holds transient one-shot sinks and closes each one when its clip
// has finished. releaseAll closes whatever is still held, so nothing leaks
// when the service is torn down before the timers fire.
type releaser struct {
	clock clockwork.Clock

	mu      sync.Mutex
	pending map[uuid.UUID]*heldSink
	closed  bool
}

type heldSink struct {
	sink  Sink
	timer clockwork.Timer
}

func newReleaser(clock clockwork.Clock) *releaser {
	return &releaser{
		clock:   clock,
		pending: make(map[uuid.UUID]*heldSink),
	}
}

// hold schedules sink to be closed after d.
func (r *releaser) hold(sink Sink, d time.Duration) uuid.UUID {
	id := uuid.New()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = sink.Close()
		return id
	}
	h := &heldSink{sink: sink}
	r.pending[id] = h
	r.mu.Unlock()

	t := r.clock.AfterFunc(d, func() { r.release(id) })

	r.mu.Lock()
	if r.closed {
		// releaseAll already closed the sink but could not see the timer.
		r.mu.Unlock()
		t.Stop()
		return id
	}
	h.timer = t
	r.mu.Unlock()
	return id
}

func (r *releaser) release(id uuid.UUID) {
	r.mu.Lock()
	h, ok := r.pending[id]
	delete(r.pending, id)
	r.mu.Unlock()

	if ok {
		_ = h.sink.Close()
	}
}

func (r *releaser) releaseAll() {
	r.mu.Lock()
	r.closed = true
	held := r.pending
	r.pending = make(map[uuid.UUID]*heldSink)
	r.mu.Unlock()

	for _, h := range held {
		if h.timer != nil {
			h.timer.Stop()
		}
		_ = h.sink.Close()
	}
}

func (r *releaser) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
