// Package audiotest provides a recording backend and clock helpers for
// exercising audio.Service and audio.Ambient without a sound device.
package audiotest

import (
	"errors"
	"sync"
	"time"

	"github.com/milk9111/soundstage/audio"
)

var ErrSinkFailed = errors.New("audiotest: sink allocation failed")

// Backend records every sink it hands out.
type Backend struct {
	mu       sync.Mutex
	sinks    []*Sink
	listener audio.Vec3
	fail     bool
}

func NewBackend() *Backend {
	return &Backend{}
}

func (b *Backend) NewSink(spatial *audio.Spatial, pos audio.Vec3) (audio.Sink, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return nil, ErrSinkFailed
	}
	s := &Sink{position: pos, volume: 1}
	if spatial != nil {
		sp := *spatial
		s.spatial = &sp
	}
	b.sinks = append(b.sinks, s)
	return s, nil
}

func (b *Backend) SetListener(pos audio.Vec3) {
	b.mu.Lock()
	b.listener = pos
	b.mu.Unlock()
}

func (b *Backend) Listener() audio.Vec3 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listener
}

// FailSinks makes subsequent NewSink calls return ErrSinkFailed.
func (b *Backend) FailSinks(fail bool) {
	b.mu.Lock()
	b.fail = fail
	b.mu.Unlock()
}

// Sinks returns every sink allocated so far, in order.
func (b *Backend) Sinks() []*Sink {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Sink(nil), b.sinks...)
}

func (b *Backend) SinkCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sinks)
}

// Sink is a recording audio.Sink.
type Sink struct {
	mu          sync.Mutex
	spatial     *audio.Spatial
	position    audio.Vec3
	volume      float64
	clip        *audio.Clip
	loop        bool
	playing     bool
	plays       int
	offset      time.Duration
	assignments []*audio.Clip
	closed      bool
	invalid     bool
}

func (s *Sink) Assign(clip *audio.Clip, loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clip = clip
	s.loop = loop
	s.playing = false
	s.offset = 0
	s.assignments = append(s.assignments, clip)
}

func (s *Sink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = true
	s.plays++
	s.offset = 0
}

func (s *Sink) Stop() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
}

func (s *Sink) Offset() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

func (s *Sink) SetPosition(pos audio.Vec3) {
	s.mu.Lock()
	s.position = pos
	s.mu.Unlock()
}

func (s *Sink) SetVolume(volume float64) {
	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()
}

func (s *Sink) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && !s.invalid
}

func (s *Sink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.playing = false
	s.mu.Unlock()
	return nil
}

// Invalidate simulates the host destroying the channel behind our back.
func (s *Sink) Invalidate() {
	s.mu.Lock()
	s.invalid = true
	s.mu.Unlock()
}

// Assignments returns every clip assigned, in order.
func (s *Sink) Assignments() []*audio.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*audio.Clip(nil), s.assignments...)
}

func (s *Sink) Clip() *audio.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clip
}

func (s *Sink) Looping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

func (s *Sink) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Sink) Plays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plays
}

func (s *Sink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Sink) Position() audio.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *Sink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *Sink) Spatial() *audio.Spatial {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spatial
}

// NewClip returns a silent clip of the given length.
func NewClip(name string, length time.Duration) *audio.Clip {
	return &audio.Clip{Name: name, Length: length}
}
