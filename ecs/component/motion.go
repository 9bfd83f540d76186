package component

// Velocity moves an entity each frame, in world units per frame.
type Velocity struct {
	X float64
	Y float64
}

var VelocityComponent = NewComponent[Velocity]()

// Orbit circles an entity around a center. Speed is in radians per frame.
type Orbit struct {
	CenterX float64
	CenterY float64
	Radius  float64
	Speed   float64
	Angle   float64
}

var OrbitComponent = NewComponent[Orbit]()
