// Package ebitenaudio implements audio.Backend on ebiten's audio context.
package ebitenaudio

import (
	"bytes"
	"log"
	"sync"
	"time"

	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/milk9111/soundstage/audio"
)

// Backend hands out sinks backed by ebiten players. Spatial sinks are
// attenuated by their distance to the listener.
type Backend struct {
	ctx       *ebaudio.Context
	newPlayer func(clip *audio.Clip, loop bool) (player, error)

	mu       sync.Mutex
	listener audio.Vec3
	master   float64
	sinks    map[*sink]struct{}
}

// New returns a backend on the process-wide ebiten audio context, creating
// it at sampleRate if none exists yet.
func New(sampleRate int) *Backend {
	ctx := ebaudio.CurrentContext()
	if ctx == nil {
		ctx = ebaudio.NewContext(sampleRate)
	}
	b := newBackend(func(clip *audio.Clip, loop bool) (player, error) {
		return openPlayer(ctx, clip, loop)
	})
	b.ctx = ctx
	return b
}

func newBackend(open func(clip *audio.Clip, loop bool) (player, error)) *Backend {
	return &Backend{
		newPlayer: open,
		master:    1,
		sinks:     make(map[*sink]struct{}),
	}
}

// player is the part of *ebaudio.Player a sink drives.
type player interface {
	Play()
	Pause()
	Rewind() error
	Position() time.Duration
	SetVolume(volume float64)
	Close() error
}

func openPlayer(ctx *ebaudio.Context, clip *audio.Clip, loop bool) (player, error) {
	if !loop {
		return ctx.NewPlayerFromBytes(clip.PCM), nil
	}
	stream := ebaudio.NewInfiniteLoop(bytes.NewReader(clip.PCM), int64(len(clip.PCM)))
	return ctx.NewPlayer(stream)
}

// SampleRate is the rate clips must be decoded at.
func (b *Backend) SampleRate() int {
	return b.ctx.SampleRate()
}

func (b *Backend) NewSink(spatial *audio.Spatial, pos audio.Vec3) (audio.Sink, error) {
	s := &sink{
		backend:  b,
		position: pos,
		volume:   1,
	}
	if spatial != nil {
		sp := *spatial
		s.spatial = &sp
	}

	b.mu.Lock()
	b.sinks[s] = struct{}{}
	b.mu.Unlock()
	return s, nil
}

func (b *Backend) SetListener(pos audio.Vec3) {
	b.mu.Lock()
	b.listener = pos
	sinks := b.snapshot()
	b.mu.Unlock()

	for _, s := range sinks {
		s.refreshVolume()
	}
}

// SetMasterVolume scales every sink, clamped to [0, 1].
func (b *Backend) SetMasterVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}

	b.mu.Lock()
	b.master = v
	sinks := b.snapshot()
	b.mu.Unlock()

	for _, s := range sinks {
		s.refreshVolume()
	}
}

// Active returns the number of open sinks.
func (b *Backend) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sinks)
}

func (b *Backend) snapshot() []*sink {
	out := make([]*sink, 0, len(b.sinks))
	for s := range b.sinks {
		out = append(out, s)
	}
	return out
}

func (b *Backend) mix() (audio.Vec3, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listener, b.master
}

func (b *Backend) forget(s *sink) {
	b.mu.Lock()
	delete(b.sinks, s)
	b.mu.Unlock()
}

type sink struct {
	backend *Backend
	spatial *audio.Spatial

	mu       sync.Mutex
	position audio.Vec3
	volume   float64
	player   player
	clip     *audio.Clip
	loop     bool
	closed   bool
}

func (s *sink) Assign(clip *audio.Clip, loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.closePlayer()
	s.clip = clip
	s.loop = loop
	if clip == nil || len(clip.PCM) == 0 {
		return
	}

	p, err := s.backend.newPlayer(clip, loop)
	if err != nil {
		log.Printf("ebitenaudio: open %q: %v", clip.Name, err)
		return
	}
	s.player = p
	s.applyVolume()
}

func (s *sink) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.player == nil {
		return
	}
	if err := s.player.Rewind(); err != nil {
		log.Printf("ebitenaudio: rewind %q: %v", s.clip.Name, err)
	}
	s.player.Play()
}

func (s *sink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		s.player.Pause()
	}
}

func (s *sink) Offset() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player == nil || s.clip == nil {
		return 0
	}
	pos := s.player.Position()
	if s.loop && s.clip.Length > 0 {
		pos %= s.clip.Length
	}
	return pos
}

func (s *sink) SetPosition(pos audio.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = pos
	s.applyVolume()
}

func (s *sink) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
	s.applyVolume()
}

func (s *sink) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	err := s.closePlayer()
	s.mu.Unlock()

	s.backend.forget(s)
	return err
}

func (s *sink) refreshVolume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyVolume()
}

// applyVolume must be called with s.mu held.
func (s *sink) applyVolume() {
	if s.player == nil {
		return
	}
	listener, master := s.backend.mix()
	gain := s.volume * master
	if s.spatial != nil {
		gain *= s.spatial.Gain(s.position.Distance(listener))
	}
	s.player.SetVolume(gain)
}

func (s *sink) closePlayer() error {
	if s.player == nil {
		return nil
	}
	s.player.Pause()
	err := s.player.Close()
	s.player = nil
	return err
}
