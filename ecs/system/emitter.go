package system

import (
	"github.com/milk9111/soundstage/audio"
	"github.com/milk9111/soundstage/ecs"
	"github.com/milk9111/soundstage/ecs/component"
)

// EmitterSystem keeps one looped 3D source per audio emitter, attached to the
// emitter's transform, and closes it once the entity or emitter is gone.
type EmitterSystem struct {
	svc     *audio.Service
	sources map[ecs.Entity]*audio.Source
}

func NewEmitterSystem(svc *audio.Service) *EmitterSystem {
	return &EmitterSystem{
		svc:     svc,
		sources: make(map[ecs.Entity]*audio.Source),
	}
}

func (s *EmitterSystem) Update(w *ecs.World) {
	if w == nil || s.svc == nil {
		return
	}

	seen := make(map[ecs.Entity]struct{}, len(s.sources))
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.AudioEmitterComponent.Kind(), func(ent ecs.Entity, t *component.Transform, em *component.AudioEmitter) {
		seen[ent] = struct{}{}
		if em.Clip == nil {
			if em.Source != nil {
				_ = em.Source.Close()
				em.Source = nil
			}
			delete(s.sources, ent)
			return
		}

		src := em.Source
		if src != nil && (src.Closed() || src.Clip() != em.Clip || src.Target() != audio.Positioner(t)) {
			_ = src.Close()
			src = nil
		}
		if src == nil {
			src = s.svc.Play3DLoopedAttached(em.Clip, t)
			if src != nil && em.Volume > 0 {
				src.SetVolume(em.Volume)
			}
			em.Source = src
		}
		if src == nil {
			delete(s.sources, ent)
			return
		}
		s.sources[ent] = src
	})

	for ent, src := range s.sources {
		if _, ok := seen[ent]; ok {
			continue
		}
		_ = src.Close()
		delete(s.sources, ent)
	}

	s.svc.Update()
}

// Active returns the number of emitters with a live source.
func (s *EmitterSystem) Active() int {
	return len(s.sources)
}

// Close releases every source the system started.
func (s *EmitterSystem) Close() {
	for ent, src := range s.sources {
		_ = src.Close()
		delete(s.sources, ent)
	}
}
