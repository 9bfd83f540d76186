package system

import (
	"github.com/milk9111/soundstage/audio"
	"github.com/milk9111/soundstage/ecs"
	"github.com/milk9111/soundstage/ecs/component"
)

// AmbientSystem hands the latest ambient request of the frame to the
// service. Earlier requests in the same frame are dropped.
type AmbientSystem struct {
	svc *audio.Service
}

func NewAmbientSystem(svc *audio.Service) *AmbientSystem {
	return &AmbientSystem{svc: svc}
}

func RequestAmbient(w *ecs.World, tracks ...*audio.Clip) {
	if w == nil {
		return
	}
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.AmbientRequestComponent.Kind(), &component.AmbientRequest{Tracks: tracks})
}

func StopAmbient(w *ecs.World) {
	RequestAmbient(w)
}

func (s *AmbientSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	var latest *component.AmbientRequest
	requests := make([]ecs.Entity, 0)
	ecs.ForEach(w, component.AmbientRequestComponent.Kind(), func(ent ecs.Entity, req *component.AmbientRequest) {
		requests = append(requests, ent)
		latest = req
	})
	for _, ent := range requests {
		ecs.DestroyEntity(w, ent)
	}

	if latest == nil || s.svc == nil {
		return
	}
	if len(latest.Tracks) == 0 {
		s.svc.StopAmbientMusic()
		return
	}
	s.svc.SetAmbientMusic(latest.Tracks)
}
