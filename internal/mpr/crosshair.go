package mpr

import (
	"math"

	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

// Crosshair is the shared focus point of all panes viewing the same
// volume, in integer voxel coordinates clamped to the volume.
type Crosshair struct {
	X int
	Y int
	Z int
}

// NewCrosshair starts at the volume center.
func NewCrosshair(v *volume.Volume) Crosshair {
	return Crosshair{X: (v.Cols - 1) / 2, Y: (v.Rows - 1) / 2, Z: (v.Slices - 1) / 2}
}

// Clamp forces the crosshair into [0, dim-1] on every axis.
func (c *Crosshair) Clamp(v *volume.Volume) {
	c.X = clampInt(c.X, v.Cols-1)
	c.Y = clampInt(c.Y, v.Rows-1)
	c.Z = clampInt(c.Z, v.Slices-1)
}

// UpdateFromClick moves the two in-plane crosshair components from a
// normalized click (cx, cy) in [0,1]² on plane p. The third component
// is unchanged. Y is inverted for coronal and sagittal panes so
// superior anatomy is at the top of the screen.
func (c *Crosshair) UpdateFromClick(p Plane, cx, cy float64, v *volume.Volume) {
	switch p {
	case Axial:
		c.X = roundScaled(cx, v.Cols-1)
		c.Y = roundScaled(cy, v.Rows-1)
	case Coronal:
		c.X = roundScaled(cx, v.Cols-1)
		c.Z = roundScaled(1-cy, v.Slices-1)
	case Sagittal:
		c.Y = roundScaled(cx, v.Rows-1)
		c.Z = roundScaled(1-cy, v.Slices-1)
	}
	c.Clamp(v)
}

// ScreenPosition is the inverse of UpdateFromClick: the normalized
// overlay position of the crosshair on plane p, up to rounding to the
// nearest voxel.
func (c Crosshair) ScreenPosition(p Plane, v *volume.Volume) (cx, cy float64) {
	switch p {
	case Axial:
		return ratioOf(c.X, v.Cols-1), ratioOf(c.Y, v.Rows-1)
	case Coronal:
		return ratioOf(c.X, v.Cols-1), 1 - ratioOf(c.Z, v.Slices-1)
	default: // Sagittal
		return ratioOf(c.Y, v.Rows-1), 1 - ratioOf(c.Z, v.Slices-1)
	}
}

// SliceIndex returns the crosshair component that selects the current
// slice of plane p.
func (c Crosshair) SliceIndex(p Plane) int {
	switch p {
	case Coronal:
		return c.Y
	case Sagittal:
		return c.X
	default:
		return c.Z
	}
}

func roundScaled(ratio float64, max int) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(ratio * float64(max)))
}

func ratioOf(v, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(v) / float64(max)
}

func clampInt(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
