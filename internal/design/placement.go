package design

import "math"

// Placement positions a design on the paintable surface. Positions are
// percentages with 50/50 at the center of the printable area.
type Placement struct {
	PositionX       float64 `json:"x"`
	PositionY       float64 `json:"y"`
	ScalePercent    float64 `json:"size"`
	RotationDegrees float64 `json:"rotation"`
}

// Placement limits.
const (
	MinPosition = 0
	MaxPosition = 100
	MinScale    = 20
	MaxScale    = 150
	MinRotation = -180
	MaxRotation = 180
)

// DefaultImagePlacement is the starting placement for uploaded images.
func DefaultImagePlacement() Placement {
	return Placement{PositionX: 50, PositionY: 50, ScalePercent: 70}
}

// DefaultTextPlacement is the starting placement for text. Text sits below
// the center by default.
func DefaultTextPlacement() Placement {
	return Placement{PositionX: 50, PositionY: 70, ScalePercent: 70}
}

// Clamp returns p with every field forced into range. NaN falls back to the
// image default for that field.
func (p Placement) Clamp() Placement {
	def := DefaultImagePlacement()
	return Placement{
		PositionX:       clamp(p.PositionX, MinPosition, MaxPosition, def.PositionX),
		PositionY:       clamp(p.PositionY, MinPosition, MaxPosition, def.PositionY),
		ScalePercent:    clamp(p.ScalePercent, MinScale, MaxScale, def.ScalePercent),
		RotationDegrees: clamp(p.RotationDegrees, MinRotation, MaxRotation, def.RotationDegrees),
	}
}

func clamp(v, lo, hi, nan float64) float64 {
	if math.IsNaN(v) {
		return nan
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
