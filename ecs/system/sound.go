package system

import (
	"github.com/milk9111/soundstage/audio"
	"github.com/milk9111/soundstage/ecs"
	"github.com/milk9111/soundstage/ecs/component"
)

type SoundSystem struct {
	svc *audio.Service
}

func NewSoundSystem(svc *audio.Service) *SoundSystem {
	return &SoundSystem{svc: svc}
}

// RequestSound queues a 2D one-shot for the next update.
func RequestSound(w *ecs.World, clip *audio.Clip) {
	requestSound(w, &component.SoundRequest{Clip: clip})
}

// RequestSoundAt queues a 3D one-shot at x, y.
func RequestSoundAt(w *ecs.World, clip *audio.Clip, x, y float64) {
	requestSound(w, &component.SoundRequest{Clip: clip, Spatial: true, X: x, Y: y})
}

func requestSound(w *ecs.World, req *component.SoundRequest) {
	if w == nil {
		return
	}
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.SoundRequestComponent.Kind(), req)
}

// Update plays every queued request and destroys the request entities.
// Requests attached to entities that also carry a transform play at that
// transform and only the request component is removed.
func (s *SoundSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.SoundRequestComponent.Kind(), func(ent ecs.Entity, req *component.SoundRequest) {
		t, hasTransform := ecs.Get(w, ent, component.TransformComponent.Kind())
		if s.svc != nil {
			switch {
			case req.Spatial && hasTransform:
				s.svc.Play3DAt(req.Clip, t)
			case req.Spatial:
				s.svc.Play3D(req.Clip, audio.Vec3{X: req.X, Y: req.Y})
			default:
				s.svc.Play2D(req.Clip)
			}
		}
		if hasTransform {
			ecs.Remove(w, ent, component.SoundRequestComponent.Kind())
			return
		}
		ecs.DestroyEntity(w, ent)
	})
}
