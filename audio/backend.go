package audio

import "time"

// Backend is the host playback capability: it allocates output channels and
// owns decoding, mixing and device output.
type Backend interface {
	// NewSink allocates a persistent output channel. A nil spatial makes a
	// plain 2D channel; otherwise the channel is attenuated by its distance
	// to the listener starting at pos.
	NewSink(spatial *Spatial, pos Vec3) (Sink, error)
	SetListener(pos Vec3)
}

// Sink is one output channel. Sinks are owned by the backend and can be
// closed independently of whoever addresses them.
type Sink interface {
	// Assign replaces the channel's clip. Playback does not start until Play.
	Assign(clip *Clip, loop bool)
	// Play starts the assigned clip from the beginning.
	Play()
	Stop()
	// Offset is the playback position within the assigned clip.
	Offset() time.Duration
	SetPosition(pos Vec3)
	SetVolume(volume float64)
	Valid() bool
	Close() error
}

// Loader resolves a logical asset name to a decoded clip.
type Loader interface {
	LoadClip(name string) (*Clip, error)
}
