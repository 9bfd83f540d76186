package audio

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	// trackSwitchMargin wakes the rotation just before the track ends so the
	// next pick starts without the looped sink restarting the old one.
	trackSwitchMargin = time.Millisecond
	minRotationDelay  = 50 * time.Millisecond
)

// Ambient rotates background music on one sink. Each rotation picks a random
// track from the current set that differs from the one just played, plays it
// looped and sleeps until it is about to finish.
//
// At most one rotation loop drives the sink: every Set bumps a generation and
// cancels the previous loop, and a loop that wakes up under a stale
// generation exits without touching the sink. Stop is lazy: it clears the set
// and the loop notices on its next wake-up, letting the audible track finish.
type Ambient struct {
	sink  Sink
	clock clockwork.Clock

	mu      sync.Mutex
	rng     *rand.Rand
	tracks  []*Clip
	current *Clip
	gen     uint64
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
}

// NewAmbient returns an idle rotator for sink. A nil clock uses real time and
// a nil rng uses a randomly seeded source.
func NewAmbient(sink Sink, clock clockwork.Clock, rng *rand.Rand) *Ambient {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Ambient{
		sink:  sink,
		clock: clock,
		rng:   rng,
	}
}

// Set replaces the candidate tracks and makes sure exactly one rotation loop
// is running. Nil entries are dropped; an empty set behaves like Stop.
func (a *Ambient) Set(tracks []*Clip) {
	clean, _ := compactClips(tracks)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	if len(clean) == 0 {
		a.tracks = nil
		a.mu.Unlock()
		return
	}

	a.tracks = clean
	a.gen++
	if a.cancel != nil {
		a.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done
	gen := a.gen
	a.mu.Unlock()

	go a.rotate(ctx, gen, done)
}

// Stop clears the candidate tracks. The running loop exits at its next
// wake-up; the track currently audible keeps playing.
func (a *Ambient) Stop() {
	a.mu.Lock()
	a.tracks = nil
	a.mu.Unlock()
}

// Current returns the track most recently picked, or nil.
func (a *Ambient) Current() *Clip {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Tracks returns a copy of the active candidate set, nil when stopped.
func (a *Ambient) Tracks() []*Clip {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.tracks == nil {
		return nil
	}
	return append([]*Clip(nil), a.tracks...)
}

// Running reports whether a rotation loop is still alive.
func (a *Ambient) Running() bool {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Done is closed when the most recently started loop has exited.
func (a *Ambient) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done == nil {
		done := make(chan struct{})
		close(done)
		return done
	}
	return a.done
}

// Close cancels the rotation loop and waits for it to exit. Set is ignored
// afterwards.
func (a *Ambient) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.tracks = nil
	a.gen++
	if a.cancel != nil {
		a.cancel()
	}
	done := a.done
	a.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (a *Ambient) rotate(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	for {
		delay, ok := a.advance(gen)
		if !ok {
			return
		}

		timer := a.clock.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
	}
}

// advance plays the next track and returns how long to sleep before the
// following pick. ok is false once the loop must exit.
func (a *Ambient) advance(gen uint64) (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen || a.tracks == nil || a.sink == nil || !a.sink.Valid() {
		return 0, false
	}

	next := PickNext(a.rng, a.tracks, a.current)
	if next == nil {
		return 0, false
	}
	a.current = next
	a.sink.Assign(next, true)
	a.sink.Play()

	return rotationDelay(next.Length, a.sink.Offset()), true
}

func rotationDelay(length, offset time.Duration) time.Duration {
	d := length - offset - trackSwitchMargin
	if d < minRotationDelay {
		d = minRotationDelay
	}
	return d
}
