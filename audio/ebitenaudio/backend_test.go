package ebitenaudio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/soundstage/audio"
)

type fakePlayer struct {
	loop     bool
	playing  bool
	rewinds  int
	position time.Duration
	volume   float64
	closed   bool
}

func (p *fakePlayer) Play()                    { p.playing = true }
func (p *fakePlayer) Pause()                   { p.playing = false }
func (p *fakePlayer) Rewind() error            { p.rewinds++; p.position = 0; return nil }
func (p *fakePlayer) Position() time.Duration  { return p.position }
func (p *fakePlayer) SetVolume(volume float64) { p.volume = volume }
func (p *fakePlayer) Close() error             { p.closed = true; return nil }

type recorder struct {
	players []*fakePlayer
	err     error
}

func (r *recorder) open(_ *audio.Clip, loop bool) (player, error) {
	if r.err != nil {
		return nil, r.err
	}
	p := &fakePlayer{loop: loop}
	r.players = append(r.players, p)
	return p, nil
}

func (r *recorder) last(t *testing.T) *fakePlayer {
	t.Helper()
	require.NotEmpty(t, r.players)
	return r.players[len(r.players)-1]
}

func newTestBackend() (*Backend, *recorder) {
	rec := &recorder{}
	return newBackend(rec.open), rec
}

func testClip(length time.Duration) *audio.Clip {
	return &audio.Clip{Name: "clip", PCM: []byte{0, 0, 0, 0}, Length: length}
}

func TestOffsetWrapsLoopedPlayers(t *testing.T) {
	b, rec := newTestBackend()
	s, err := b.NewSink(nil, audio.Vec3{})
	require.NoError(t, err)

	s.Assign(testClip(4*time.Second), true)
	s.Play()
	p := rec.last(t)
	assert.True(t, p.loop)
	assert.True(t, p.playing)
	assert.Equal(t, 1, p.rewinds)

	p.position = 9*time.Second + 250*time.Millisecond
	assert.Equal(t, time.Second+250*time.Millisecond, s.Offset())

	p.position = 4 * time.Second
	assert.Equal(t, time.Duration(0), s.Offset())
}

func TestOffsetOfOneShotIsRaw(t *testing.T) {
	b, rec := newTestBackend()
	s, err := b.NewSink(nil, audio.Vec3{})
	require.NoError(t, err)

	s.Assign(testClip(time.Second), false)
	p := rec.last(t)
	assert.False(t, p.loop)

	p.position = 3 * time.Second
	assert.Equal(t, 3*time.Second, s.Offset())
}

func TestOffsetWithoutPlayer(t *testing.T) {
	b, rec := newTestBackend()
	s, err := b.NewSink(nil, audio.Vec3{})
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), s.Offset())

	s.Assign(&audio.Clip{Name: "empty"}, true)
	assert.Empty(t, rec.players)
	assert.Equal(t, time.Duration(0), s.Offset())
}

func TestVolumeComposesMasterAndSpatialGain(t *testing.T) {
	b, rec := newTestBackend()
	sp := audio.Spatial{MinDistance: 1, MaxDistance: 11, Rolloff: audio.RolloffLinear}
	s, err := b.NewSink(&sp, audio.Vec3{X: 6})
	require.NoError(t, err)

	s.Assign(testClip(time.Second), false)
	p := rec.last(t)
	assert.InDelta(t, 0.5, p.volume, 1e-9, "distance 6 halves a 1..11 linear rolloff")

	s.SetVolume(0.8)
	assert.InDelta(t, 0.4, p.volume, 1e-9)

	b.SetMasterVolume(0.5)
	assert.InDelta(t, 0.2, p.volume, 1e-9)

	b.SetListener(audio.Vec3{X: 6})
	assert.InDelta(t, 0.4, p.volume, 1e-9)

	s.SetPosition(audio.Vec3{X: 20})
	assert.InDelta(t, 0, p.volume, 1e-9)
}

func TestFlatSinkIgnoresListener(t *testing.T) {
	b, rec := newTestBackend()
	s, err := b.NewSink(nil, audio.Vec3{X: 100})
	require.NoError(t, err)

	s.Assign(testClip(time.Second), true)
	s.SetVolume(0.6)
	b.SetListener(audio.Vec3{X: -100})
	assert.InDelta(t, 0.6, rec.last(t).volume, 1e-9)
}

func TestMasterVolumeIsClamped(t *testing.T) {
	tests := []struct {
		name   string
		master float64
		want   float64
	}{
		{name: "below", master: -2, want: 0},
		{name: "inside", master: 0.25, want: 0.25},
		{name: "above", master: 3, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, rec := newTestBackend()
			s, err := b.NewSink(nil, audio.Vec3{})
			require.NoError(t, err)
			s.Assign(testClip(time.Second), false)

			b.SetMasterVolume(tt.master)
			assert.InDelta(t, tt.want, rec.last(t).volume, 1e-9)
		})
	}
}

func TestReassignClosesPreviousPlayer(t *testing.T) {
	b, rec := newTestBackend()
	s, err := b.NewSink(nil, audio.Vec3{})
	require.NoError(t, err)

	s.Assign(testClip(time.Second), true)
	first := rec.last(t)
	s.Assign(testClip(2*time.Second), true)

	assert.True(t, first.closed)
	assert.Len(t, rec.players, 2)
	assert.False(t, rec.last(t).closed)
}

func TestOpenFailureLeavesSinkSilent(t *testing.T) {
	b, rec := newTestBackend()
	rec.err = errors.New("no device")
	s, err := b.NewSink(nil, audio.Vec3{})
	require.NoError(t, err)

	s.Assign(testClip(time.Second), true)
	assert.NotPanics(t, s.Play)
	assert.Equal(t, time.Duration(0), s.Offset())
	assert.True(t, s.Valid())
}

func TestCloseForgetsSink(t *testing.T) {
	b, rec := newTestBackend()
	s, err := b.NewSink(nil, audio.Vec3{})
	require.NoError(t, err)
	_, err = b.NewSink(nil, audio.Vec3{})
	require.NoError(t, err)
	require.Equal(t, 2, b.Active())

	s.Assign(testClip(time.Second), false)
	s.Play()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	p := rec.last(t)
	assert.True(t, p.closed)
	assert.False(t, p.playing)
	assert.False(t, s.Valid())
	assert.Equal(t, 1, b.Active())

	s.Assign(testClip(time.Second), false)
	assert.Len(t, rec.players, 1, "closed sinks ignore new clips")
}
