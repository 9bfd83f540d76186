package audio

import (
	"fmt"
	"strings"
)

type Rolloff int

const (
	RolloffLinear Rolloff = iota
	RolloffLogarithmic
)

func (r Rolloff) String() string {
	switch r {
	case RolloffLinear:
		return "linear"
	case RolloffLogarithmic:
		return "logarithmic"
	default:
		return fmt.Sprintf("rolloff(%d)", int(r))
	}
}

// ParseRolloff accepts "linear", "logarithmic" or "log". Empty means linear.
func ParseRolloff(s string) (Rolloff, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return RolloffLinear, nil
	case "logarithmic", "log":
		return RolloffLogarithmic, nil
	default:
		return RolloffLinear, fmt.Errorf("audio: unknown rolloff %q", s)
	}
}

// Spatial describes how a 3D source is attenuated by listener distance.
// Doppler is never applied.
type Spatial struct {
	MaxDistance float64
	MinDistance float64
	Rolloff     Rolloff
}

// DefaultSpatial is a linear rolloff that reaches silence at 20 units.
func DefaultSpatial() Spatial {
	return Spatial{
		MaxDistance: 20,
		MinDistance: 1,
		Rolloff:     RolloffLinear,
	}
}

// Gain returns the volume multiplier in [0, 1] for a source at distance.
func (s Spatial) Gain(distance float64) float64 {
	minDist := s.MinDistance
	if minDist <= 0 {
		minDist = 1
	}
	maxDist := s.MaxDistance
	if maxDist <= minDist {
		maxDist = minDist
	}
	if distance <= minDist {
		return 1
	}

	switch s.Rolloff {
	case RolloffLogarithmic:
		// attenuation stops at max distance
		if distance > maxDist {
			distance = maxDist
		}
		return minDist / distance
	default:
		if distance >= maxDist {
			return 0
		}
		return 1 - (distance-minDist)/(maxDist-minDist)
	}
}
