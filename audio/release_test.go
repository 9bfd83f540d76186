package audio

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeCounter struct {
	mu     sync.Mutex
	closes int
}

func (s *closeCounter) Assign(*Clip, bool)    {}
func (s *closeCounter) Play()                 {}
func (s *closeCounter) Stop()                 {}
func (s *closeCounter) Offset() time.Duration { return 0 }
func (s *closeCounter) SetPosition(Vec3)      {}
func (s *closeCounter) SetVolume(float64)     {}
func (s *closeCounter) Valid() bool           { return s.count() == 0 }

func (s *closeCounter) Close() error {
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	return nil
}

func (s *closeCounter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// interleavedClock runs hook right after each timer is scheduled, before
// the caller gets the timer back.
type interleavedClock struct {
	*clockwork.FakeClock
	hook   func()
	timers []clockwork.Timer
}

func (c *interleavedClock) AfterFunc(d time.Duration, f func()) clockwork.Timer {
	t := c.FakeClock.AfterFunc(d, f)
	c.timers = append(c.timers, t)
	if c.hook != nil {
		c.hook()
	}
	return t
}

func TestReleaserClosesSinkAfterDuration(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := newReleaser(clock)
	sink := &closeCounter{}

	r.hold(sink, time.Second)
	assert.Equal(t, 1, r.count())

	clock.Advance(999 * time.Millisecond)
	assert.Equal(t, 0, sink.count())

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool {
		return sink.count() == 1 && r.count() == 0
	}, 2*time.Second, time.Millisecond)
}

func TestReleaserStopsTimerScheduledDuringReleaseAll(t *testing.T) {
	clock := &interleavedClock{FakeClock: clockwork.NewFakeClock()}
	r := newReleaser(clock)
	clock.hook = r.releaseAll
	sink := &closeCounter{}

	r.hold(sink, time.Second)

	require.Len(t, clock.timers, 1)
	assert.False(t, clock.timers[0].Stop(), "timer must already be stopped")
	assert.Equal(t, 1, sink.count())
	assert.Equal(t, 0, r.count())

	clock.Advance(time.Hour)
	assert.Equal(t, 1, sink.count())
}

func TestReleaserHoldAfterReleaseAllClosesImmediately(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := newReleaser(clock)
	r.releaseAll()

	sink := &closeCounter{}
	r.hold(sink, time.Second)

	assert.Equal(t, 1, sink.count())
	assert.Equal(t, 0, r.count())
}
