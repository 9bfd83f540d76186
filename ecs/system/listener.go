package system

import (
	"github.com/milk9111/soundstage/audio"
	"github.com/milk9111/soundstage/ecs"
	"github.com/milk9111/soundstage/ecs/component"
)

// ListenerSystem moves the audio listener onto the first entity tagged with
// a Listener component.
type ListenerSystem struct {
	svc  *audio.Service
	last audio.Vec3
	set  bool
}

func NewListenerSystem(svc *audio.Service) *ListenerSystem {
	return &ListenerSystem{svc: svc}
}

func (s *ListenerSystem) Update(w *ecs.World) {
	if w == nil || s.svc == nil {
		return
	}
	ent, ok := ecs.First(w, component.ListenerComponent.Kind())
	if !ok {
		return
	}
	t, ok := ecs.Get(w, ent, component.TransformComponent.Kind())
	if !ok {
		return
	}
	pos := t.Position()
	if s.set && pos == s.last {
		return
	}
	s.svc.SetListener(pos)
	s.last = pos
	s.set = true
}
