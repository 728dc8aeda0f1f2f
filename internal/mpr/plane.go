// Package mpr resamples a volume onto the three orthogonal planes and
// onto oblique planes, applies window/level, and models the crosshair
// and scout lines shared by simultaneously visible panes.
package mpr

import (
	"math"

	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

// Plane identifies one of the three orthogonal viewing planes. The set
// is closed; every switch over Plane is total.
type Plane int

const (
	Axial Plane = iota
	Coronal
	Sagittal
)

func (p Plane) String() string {
	switch p {
	case Axial:
		return "axial"
	case Coronal:
		return "coronal"
	case Sagittal:
		return "sagittal"
	}
	return "unknown"
}

// Geometry describes the output raster of one plane: pixel dimensions
// and physical pixel pitch in mm.
type Geometry struct {
	Width    int
	Height   int
	SpacingX float64
	SpacingY float64
}

// PlaneGeometry returns the output geometry for extracting plane p from
// v:
//
//	axial    C×R at (sx, sy)
//	coronal  C×S at (sx, sz)
//	sagittal R×S at (sy, sz)
func PlaneGeometry(v *volume.Volume, p Plane) Geometry {
	switch p {
	case Coronal:
		return Geometry{Width: v.Cols, Height: v.Slices, SpacingX: v.Spacing[0], SpacingY: v.Spacing[2]}
	case Sagittal:
		return Geometry{Width: v.Rows, Height: v.Slices, SpacingX: v.Spacing[1], SpacingY: v.Spacing[2]}
	default:
		return Geometry{Width: v.Cols, Height: v.Rows, SpacingX: v.Spacing[0], SpacingY: v.Spacing[1]}
	}
}

// SliceCount returns how many slices plane p has in v.
func SliceCount(v *volume.Volume, p Plane) int {
	switch p {
	case Coronal:
		return v.Rows
	case Sagittal:
		return v.Cols
	default:
		return v.Slices
	}
}

// clampIndex rounds a fractional slice index and clamps it to
// [0, count-1].
func clampIndex(i float64, count int) int {
	idx := int(math.Round(i))
	if idx < 0 {
		return 0
	}
	if idx >= count {
		return count - 1
	}
	return idx
}
