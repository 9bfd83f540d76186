package component

import "github.com/milk9111/soundstage/audio"

// Transform places an entity in world units. Z is unused by the 2D demo but
// kept so sounds can sit above or below the plane.
type Transform struct {
	X float64
	Y float64
	Z float64
}

// Position lets an attached audio source follow the transform.
func (t *Transform) Position() audio.Vec3 {
	return audio.Vec3{X: t.X, Y: t.Y, Z: t.Z}
}

var TransformComponent = NewComponent[Transform]()
