package audio

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	defaultMusicVolume   = 0.6
	defaultEffectsVolume = 1.0
)

var ErrNilBackend = errors.New("audio: backend is nil")

// Service is the game's audio entry point. The composition root builds one
// with New and hands it to whoever needs to play sound.
type Service struct {
	backend       Backend
	loader        Loader
	logger        *log.Logger
	clock         clockwork.Clock
	rng           *rand.Rand
	spatial       Spatial
	debug         bool
	musicVolume   float64
	effectsVolume float64

	ambientSink Sink
	ambient     *Ambient
	transients  *releaser

	mu      sync.Mutex
	sources map[uuid.UUID]*Source
	closed  bool
}

type Option func(*Service)

// WithLoader sets what Load resolves names through.
func WithLoader(l Loader) Option {
	return func(s *Service) { s.loader = l }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock driving ambient rotation and one-shot release.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRand seeds ambient track selection.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// WithSpatial sets the attenuation used by every 3D play.
func WithSpatial(sp Spatial) Option {
	return func(s *Service) { s.spatial = sp }
}

// WithDebug enables development diagnostics such as nil clip warnings.
func WithDebug(debug bool) Option {
	return func(s *Service) { s.debug = debug }
}

func WithMusicVolume(v float64) Option {
	return func(s *Service) { s.musicVolume = clampVolume(v) }
}

func WithEffectsVolume(v float64) Option {
	return func(s *Service) { s.effectsVolume = clampVolume(v) }
}

// New creates the service and allocates its ambient music channel.
func New(backend Backend, opts ...Option) (*Service, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	s := &Service{
		backend:       backend,
		logger:        log.New(os.Stderr, "", log.LstdFlags),
		clock:         clockwork.NewRealClock(),
		spatial:       DefaultSpatial(),
		musicVolume:   defaultMusicVolume,
		effectsVolume: defaultEffectsVolume,
		sources:       make(map[uuid.UUID]*Source),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	sink, err := backend.NewSink(nil, Vec3{})
	if err != nil {
		return nil, fmt.Errorf("audio: ambient sink: %w", err)
	}
	sink.SetVolume(s.musicVolume)
	s.ambientSink = sink
	s.ambient = NewAmbient(sink, s.clock, s.rng)
	s.transients = newReleaser(s.clock)
	return s, nil
}

// Play2D plays clip once without spatialization.
func (s *Service) Play2D(clip *Clip) {
	if clip == nil {
		s.warnNilClip("Play2D")
		return
	}
	s.oneShot(clip, nil, Vec3{})
}

// Play3D plays clip once at pos, attenuated by distance to the listener.
func (s *Service) Play3D(clip *Clip, pos Vec3) {
	if clip == nil {
		s.warnNilClip("Play3D")
		return
	}
	sp := s.spatial
	s.oneShot(clip, &sp, pos)
}

// Play3DAt plays clip once at the target's current position. The sound does
// not follow the target afterwards.
func (s *Service) Play3DAt(clip *Clip, target Positioner) {
	if clip == nil {
		s.warnNilClip("Play3DAt")
		return
	}
	if target == nil {
		s.warnf("audio: Play3DAt %q: nil target", clip.Name)
		return
	}
	s.Play3D(clip, target.Position())
}

// Play2DLooped starts clip looping without spatialization. It returns nil
// when clip is nil or no channel could be allocated.
func (s *Service) Play2DLooped(clip *Clip) *Source {
	if clip == nil {
		s.warnNilClip("Play2DLooped")
		return nil
	}
	return s.looped(clip, nil, Vec3{}, nil)
}

// Play3DLooped starts clip looping at a fixed position.
func (s *Service) Play3DLooped(clip *Clip, pos Vec3) *Source {
	if clip == nil {
		s.warnNilClip("Play3DLooped")
		return nil
	}
	sp := s.spatial
	return s.looped(clip, &sp, pos, nil)
}

// Play3DLoopedAttached starts clip looping at target and keeps the source on
// the target every Update until the source is closed.
func (s *Service) Play3DLoopedAttached(clip *Clip, target Positioner) *Source {
	if clip == nil {
		s.warnNilClip("Play3DLoopedAttached")
		return nil
	}
	if target == nil {
		s.warnf("audio: Play3DLoopedAttached %q: nil target", clip.Name)
		return nil
	}
	sp := s.spatial
	return s.looped(clip, &sp, target.Position(), target)
}

// Load resolves a clip by logical name. Failures are logged and yield nil,
// which every play call accepts as a no-op.
func (s *Service) Load(name string) *Clip {
	if s.loader == nil {
		s.logger.Printf("audio: load %q: no loader configured", name)
		return nil
	}
	clip, err := s.loader.LoadClip(name)
	if err != nil {
		s.logger.Printf("audio: load %q: %v", name, err)
		return nil
	}
	return clip
}

// LoadAll loads every name in order; missing clips are left out.
func (s *Service) LoadAll(names ...string) []*Clip {
	clips := make([]*Clip, 0, len(names))
	for _, name := range names {
		if clip := s.Load(name); clip != nil {
			clips = append(clips, clip)
		}
	}
	return clips
}

// SetAmbientMusic replaces the ambient track set, starting the rotation if
// it is idle. An empty set stops it.
func (s *Service) SetAmbientMusic(clips []*Clip) {
	if s.isClosed() {
		return
	}
	if _, dropped := compactClips(clips); dropped > 0 {
		s.warnf("audio: SetAmbientMusic: dropped %d nil clip(s)", dropped)
	}
	s.ambient.Set(clips)
}

// StopAmbientMusic clears the ambient track set. The current track is not
// cut off; no new track is picked once it ends.
func (s *Service) StopAmbientMusic() {
	s.ambient.Stop()
}

// AmbientTrack returns the ambient track most recently started.
func (s *Service) AmbientTrack() *Clip {
	return s.ambient.Current()
}

func (s *Service) Ambient() *Ambient {
	return s.ambient
}

func (s *Service) SetListener(pos Vec3) {
	s.backend.SetListener(pos)
}

// Update moves attached sources onto their targets. Call once per frame.
func (s *Service) Update() {
	s.mu.Lock()
	attached := make([]*Source, 0, len(s.sources))
	for _, src := range s.sources {
		if src.target != nil {
			attached = append(attached, src)
		}
	}
	s.mu.Unlock()

	for _, src := range attached {
		if src.Closed() {
			_ = src.Close()
			continue
		}
		src.follow()
	}
}

// Sources returns the number of live looped sources.
func (s *Service) Sources() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sources)
}

// PendingOneShots returns the number of one-shot channels not yet released.
func (s *Service) PendingOneShots() int {
	return s.transients.count()
}

// Close stops the ambient rotation and releases every channel the service
// allocated. Play calls after Close are ignored.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	sources := make([]*Source, 0, len(s.sources))
	for _, src := range s.sources {
		sources = append(sources, src)
	}
	s.mu.Unlock()

	s.ambient.Close()
	s.transients.releaseAll()

	var errs []error
	for _, src := range sources {
		if err := src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.ambientSink.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Service) oneShot(clip *Clip, spatial *Spatial, pos Vec3) {
	if s.isClosed() {
		return
	}
	sink, err := s.backend.NewSink(spatial, pos)
	if err != nil {
		s.logger.Printf("audio: one-shot %q: %v", clip.Name, err)
		return
	}
	sink.SetVolume(s.effectsVolume)
	sink.Assign(clip, false)
	sink.Play()
	s.transients.hold(sink, clip.Length)
}

func (s *Service) looped(clip *Clip, spatial *Spatial, pos Vec3, target Positioner) *Source {
	if s.isClosed() {
		return nil
	}
	sink, err := s.backend.NewSink(spatial, pos)
	if err != nil {
		s.logger.Printf("audio: looped %q: %v", clip.Name, err)
		return nil
	}
	sink.SetVolume(s.effectsVolume)
	sink.Assign(clip, true)
	sink.Play()

	src := &Source{
		id:     uuid.New(),
		clip:   clip,
		sink:   sink,
		target: target,
		owner:  s,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = sink.Close()
		return nil
	}
	s.sources[src.id] = src
	s.mu.Unlock()
	return src
}

func (s *Service) forget(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sources, id)
	s.mu.Unlock()
}

func (s *Service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Service) warnNilClip(op string) {
	s.warnf("audio: %s: nil clip", op)
}

func (s *Service) warnf(format string, args ...any) {
	if !s.debug {
		return
	}
	s.logger.Printf(format, args...)
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
