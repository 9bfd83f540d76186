package component

import "github.com/milk9111/soundstage/audio"

// AudioEmitter loops Clip at the entity's transform. The emitter system
// fills Source once playback starts.
type AudioEmitter struct {
	Clip   *audio.Clip
	Volume float64
	Source *audio.Source
}

var AudioEmitterComponent = NewComponent[AudioEmitter]()

// Listener marks the entity whose transform is the audio listener.
type Listener struct{}

var ListenerComponent = NewComponent[Listener]()

// SoundRequest is a one-shot request to play a clip. Spatial requests play
// at the requesting entity's transform, or at X/Y when it has none.
type SoundRequest struct {
	Clip    *audio.Clip
	Spatial bool
	X       float64
	Y       float64
}

var SoundRequestComponent = NewComponent[SoundRequest]()

// AmbientRequest is a one-shot request to replace the ambient track set.
// An empty Tracks stops the rotation.
type AmbientRequest struct {
	Tracks []*audio.Clip
}

var AmbientRequestComponent = NewComponent[AmbientRequest]()
