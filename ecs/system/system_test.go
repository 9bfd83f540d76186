package system

import (
	"bytes"
	"log"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/soundstage/audio"
	"github.com/milk9111/soundstage/audio/audiotest"
	"github.com/milk9111/soundstage/ecs"
	"github.com/milk9111/soundstage/ecs/component"
)

type harness struct {
	backend *audiotest.Backend
	clock   *clockwork.FakeClock
	svc     *audio.Service
	world   *ecs.World
	logs    *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backend: audiotest.NewBackend(),
		clock:   clockwork.NewFakeClock(),
		world:   ecs.NewWorld(),
		logs:    &bytes.Buffer{},
	}
	svc, err := audio.New(h.backend,
		audio.WithClock(h.clock),
		audio.WithRand(rand.New(rand.NewPCG(1, 2))),
		audio.WithLogger(log.New(h.logs, "", 0)),
		audio.WithDebug(true),
	)
	require.NoError(t, err)
	h.svc = svc
	t.Cleanup(func() { _ = svc.Close() })
	return h
}

func (h *harness) spawnEmitter(t *testing.T, clip *audio.Clip, x, y float64) (ecs.Entity, *component.Transform) {
	t.Helper()
	ent := ecs.CreateEntity(h.world)
	tr := &component.Transform{X: x, Y: y}
	require.NoError(t, ecs.Add(h.world, ent, component.TransformComponent.Kind(), tr))
	require.NoError(t, ecs.Add(h.world, ent, component.AudioEmitterComponent.Kind(), &component.AudioEmitter{Clip: clip}))
	return ent, tr
}

func TestEmitterSystemAttachesAndFollows(t *testing.T) {
	h := newHarness(t)
	sys := NewEmitterSystem(h.svc)
	motion := NewMotionSystem()
	hum := audiotest.NewClip("hum", time.Second)

	ent, tr := h.spawnEmitter(t, hum, 1, 2)
	require.NoError(t, ecs.Add(h.world, ent, component.VelocityComponent.Kind(), &component.Velocity{X: 1}))

	sys.Update(h.world)
	require.Equal(t, 1, sys.Active())
	require.Equal(t, 1, h.svc.Sources())

	em, ok := ecs.Get(h.world, ent, component.AudioEmitterComponent.Kind())
	require.True(t, ok)
	require.NotNil(t, em.Source)
	assert.Same(t, hum, em.Source.Clip())

	sink := h.backend.Sinks()[1]
	assert.True(t, sink.Looping())
	assert.Equal(t, audio.Vec3{X: 1, Y: 2}, sink.Position())

	first := em.Source
	motion.Update(h.world)
	sys.Update(h.world)
	assert.Same(t, first, em.Source, "source must be reused across frames")
	assert.Equal(t, 2.0, tr.X)
	assert.Equal(t, audio.Vec3{X: 2, Y: 2}, sink.Position())
}

func TestEmitterSystemClosesSourceOfDeadEntity(t *testing.T) {
	h := newHarness(t)
	sys := NewEmitterSystem(h.svc)

	ent, _ := h.spawnEmitter(t, audiotest.NewClip("hum", time.Second), 0, 0)
	sys.Update(h.world)
	sink := h.backend.Sinks()[1]

	ecs.DestroyEntity(h.world, ent)
	sys.Update(h.world)

	assert.Equal(t, 0, sys.Active())
	assert.Equal(t, 0, h.svc.Sources())
	assert.True(t, sink.Closed())
}

func TestEmitterSystemRestartsOnClipChange(t *testing.T) {
	h := newHarness(t)
	sys := NewEmitterSystem(h.svc)
	a := audiotest.NewClip("a", time.Second)
	b := audiotest.NewClip("b", time.Second)

	ent, _ := h.spawnEmitter(t, a, 0, 0)
	sys.Update(h.world)
	em, _ := ecs.Get(h.world, ent, component.AudioEmitterComponent.Kind())
	old := em.Source

	em.Clip = b
	sys.Update(h.world)
	require.NotNil(t, em.Source)
	assert.NotSame(t, old, em.Source)
	assert.True(t, old.Closed())
	assert.Same(t, b, em.Source.Clip())
	assert.Equal(t, 1, h.svc.Sources())
}

func TestEmitterSystemReleasesSourceWhenClipCleared(t *testing.T) {
	h := newHarness(t)
	sys := NewEmitterSystem(h.svc)

	ent, _ := h.spawnEmitter(t, audiotest.NewClip("engine", time.Second), 0, 0)
	sys.Update(h.world)
	require.Equal(t, 1, sys.Active())
	sink := h.backend.Sinks()[1]

	em, _ := ecs.Get(h.world, ent, component.AudioEmitterComponent.Kind())
	old := em.Source
	require.NotNil(t, old)

	em.Clip = nil
	sys.Update(h.world)

	assert.True(t, old.Closed())
	assert.Nil(t, em.Source)
	assert.True(t, sink.Closed())
	assert.Equal(t, 0, sys.Active())
	assert.Equal(t, 0, h.svc.Sources())
}

func TestEmitterSystemSkipsNilClip(t *testing.T) {
	h := newHarness(t)
	sys := NewEmitterSystem(h.svc)

	h.spawnEmitter(t, nil, 0, 0)
	sys.Update(h.world)
	sys.Update(h.world)

	assert.Equal(t, 0, sys.Active())
	assert.Equal(t, 1, h.backend.SinkCount(), "only the ambient sink")
	assert.Empty(t, h.logs.String())
}

func TestEmitterSystemClose(t *testing.T) {
	h := newHarness(t)
	sys := NewEmitterSystem(h.svc)
	h.spawnEmitter(t, audiotest.NewClip("a", time.Second), 0, 0)
	h.spawnEmitter(t, audiotest.NewClip("b", time.Second), 5, 5)

	sys.Update(h.world)
	require.Equal(t, 2, h.svc.Sources())

	sys.Close()
	assert.Equal(t, 0, sys.Active())
	assert.Equal(t, 0, h.svc.Sources())
}

func TestMotionSystemOrbit(t *testing.T) {
	w := ecs.NewWorld()
	ent := ecs.CreateEntity(w)
	tr := &component.Transform{}
	require.NoError(t, ecs.Add(w, ent, component.TransformComponent.Kind(), tr))
	require.NoError(t, ecs.Add(w, ent, component.OrbitComponent.Kind(), &component.Orbit{CenterX: 10, CenterY: 10, Radius: 5, Speed: math.Pi / 2}))

	NewMotionSystem().Update(w)
	assert.InDelta(t, 10, tr.X, 1e-9)
	assert.InDelta(t, 15, tr.Y, 1e-9)

	NewMotionSystem().Update(w)
	assert.InDelta(t, 5, tr.X, 1e-9)
	assert.InDelta(t, 10, tr.Y, 1e-9)
}

func TestListenerSystem(t *testing.T) {
	h := newHarness(t)
	sys := NewListenerSystem(h.svc)

	sys.Update(h.world)
	assert.Equal(t, audio.Vec3{}, h.backend.Listener())

	ent := ecs.CreateEntity(h.world)
	tr := &component.Transform{X: 3, Y: 4}
	require.NoError(t, ecs.Add(h.world, ent, component.TransformComponent.Kind(), tr))
	require.NoError(t, ecs.Add(h.world, ent, component.ListenerComponent.Kind(), &component.Listener{}))

	sys.Update(h.world)
	assert.Equal(t, audio.Vec3{X: 3, Y: 4}, h.backend.Listener())

	tr.Y = -1
	sys.Update(h.world)
	assert.Equal(t, audio.Vec3{X: 3, Y: -1}, h.backend.Listener())
}

func TestSoundSystem(t *testing.T) {
	h := newHarness(t)
	sys := NewSoundSystem(h.svc)
	jump := audiotest.NewClip("jump", 250*time.Millisecond)

	RequestSound(h.world, jump)
	RequestSoundAt(h.world, jump, 4, 5)
	RequestSound(h.world, nil)

	sys.Update(h.world)

	assert.Empty(t, ecs.Entities(h.world), "request entities are destroyed")
	require.Equal(t, 3, h.backend.SinkCount())
	sinks := h.backend.Sinks()
	assert.Nil(t, sinks[1].Spatial())
	assert.NotNil(t, sinks[2].Spatial())
	assert.Equal(t, audio.Vec3{X: 4, Y: 5}, sinks[2].Position())
	assert.Contains(t, h.logs.String(), "audio: Play2D: nil clip")
	assert.Equal(t, 2, h.svc.PendingOneShots())

	h.clock.Advance(250 * time.Millisecond)
	require.Eventually(t, func() bool {
		return h.svc.PendingOneShots() == 0
	}, audiotest.WaitTimeout, time.Millisecond)
}

func TestSoundSystemRequestOnEntity(t *testing.T) {
	h := newHarness(t)
	sys := NewSoundSystem(h.svc)

	ent := ecs.CreateEntity(h.world)
	require.NoError(t, ecs.Add(h.world, ent, component.TransformComponent.Kind(), &component.Transform{X: 7}))
	require.NoError(t, ecs.Add(h.world, ent, component.SoundRequestComponent.Kind(), &component.SoundRequest{
		Clip:    audiotest.NewClip("hit", time.Second),
		Spatial: true,
	}))

	sys.Update(h.world)

	assert.True(t, ecs.IsAlive(h.world, ent))
	assert.False(t, ecs.Has(h.world, ent, component.SoundRequestComponent.Kind()))
	assert.Equal(t, audio.Vec3{X: 7}, h.backend.Sinks()[1].Position())
}

func TestAmbientSystemUsesLatestRequest(t *testing.T) {
	h := newHarness(t)
	sys := NewAmbientSystem(h.svc)
	day := audiotest.NewClip("day", 4*time.Second)
	night := audiotest.NewClip("night", 4*time.Second)

	RequestAmbient(h.world, day)
	RequestAmbient(h.world, night)
	sys.Update(h.world)

	assert.Equal(t, 0, ecs.Count(h.world, component.AmbientRequestComponent.Kind()))
	assert.Equal(t, []*audio.Clip{night}, h.svc.Ambient().Tracks())
	assert.Eventually(t, func() bool { return h.svc.AmbientTrack() == night }, 2*time.Second, time.Millisecond)

	StopAmbient(h.world)
	sys.Update(h.world)
	assert.Nil(t, h.svc.Ambient().Tracks())

	sys.Update(h.world)
	assert.Nil(t, h.svc.Ambient().Tracks())
}
