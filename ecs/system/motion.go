package system

import (
	"math"

	"github.com/milk9111/soundstage/ecs"
	"github.com/milk9111/soundstage/ecs/component"
)

type MotionSystem struct{}

func NewMotionSystem() *MotionSystem {
	return &MotionSystem{}
}

func (m *MotionSystem) Update(w *ecs.World) {
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.VelocityComponent.Kind(), func(_ ecs.Entity, t *component.Transform, v *component.Velocity) {
		t.X += v.X
		t.Y += v.Y
	})

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.OrbitComponent.Kind(), func(_ ecs.Entity, t *component.Transform, o *component.Orbit) {
		o.Angle = math.Mod(o.Angle+o.Speed, 2*math.Pi)
		t.X = o.CenterX + math.Cos(o.Angle)*o.Radius
		t.Y = o.CenterY + math.Sin(o.Angle)*o.Radius
	})
}
