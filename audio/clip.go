// Package audio plays game sound: one-shot and looped 2D/3D sources and a
// background ambient-music rotator, on top of a host playback Backend.
package audio

import (
	"math"
	"time"
)

// bytesPerFrame is the size of one 16-bit little-endian stereo frame.
const bytesPerFrame = 4

// Clip is a decoded audio asset. PCM holds 16-bit little-endian stereo
// frames at the backend sample rate. Clips are compared by pointer.
type Clip struct {
	Name   string
	PCM    []byte
	Length time.Duration
}

// NewClip wraps decoded PCM and derives its length from sampleRate.
func NewClip(name string, pcm []byte, sampleRate int) *Clip {
	return &Clip{
		Name:   name,
		PCM:    pcm,
		Length: PCMDuration(len(pcm), sampleRate),
	}
}

// PCMDuration returns how long n bytes of 16-bit stereo PCM play for.
func PCMDuration(n, sampleRate int) time.Duration {
	if n <= 0 || sampleRate <= 0 {
		return 0
	}
	frames := int64(n / bytesPerFrame)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

func (c *Clip) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.Name
}

// Vec3 is a world-space position.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Len()
}

// Positioner is anything a looped source can follow, typically a transform
// owned by the game's entity store.
type Positioner interface {
	Position() Vec3
}
