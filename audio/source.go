package audio

import (
	"sync"

	"github.com/google/uuid"
)

// Source is a looped sound handed back to the caller. It keeps playing until
// stopped or closed; an attached source follows its target on every
// Service.Update.
type Source struct {
	id     uuid.UUID
	clip   *Clip
	sink   Sink
	target Positioner
	owner  *Service

	mu     sync.Mutex
	closed bool
}

func (s *Source) ID() uuid.UUID {
	return s.id
}

func (s *Source) Clip() *Clip {
	return s.clip
}

// Target returns the positioner the source follows, or nil.
func (s *Source) Target() Positioner {
	return s.target
}

// Play restarts the clip from the beginning.
func (s *Source) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sink.Play()
}

func (s *Source) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sink.Stop()
}

func (s *Source) SetPosition(pos Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sink.SetPosition(pos)
}

func (s *Source) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sink.SetVolume(volume)
}

// Closed reports whether the source was closed or its sink went away.
func (s *Source) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed || !s.sink.Valid()
}

// Close stops playback and releases the sink. Safe to call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.owner != nil {
		s.owner.forget(s.id)
	}
	return s.sink.Close()
}

// follow moves the sink to the target's current position.
func (s *Source) follow() {
	if s.target == nil {
		return
	}
	s.SetPosition(s.target.Position())
}
