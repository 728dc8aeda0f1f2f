package mpr

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/prateek-tiwarii/synpacs/internal/geom"
	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

// ObliquePlane is an arbitrarily oriented resampling plane in voxel
// space: a center point, a unit normal, and in-plane unit axes U and V.
// {U, V, Normal} stay mutually orthonormal through every mutation.
type ObliquePlane struct {
	Center mgl64.Vec3
	Normal mgl64.Vec3
	U      mgl64.Vec3
	V      mgl64.Vec3

	// Rotation accumulates in-plane rotation around the normal, in
	// radians.
	Rotation float64
}

// NewObliquePlane starts as the axial plane through the volume center.
func NewObliquePlane(v *volume.Volume) *ObliquePlane {
	return &ObliquePlane{
		Center: mgl64.Vec3{
			float64(v.Cols-1) / 2,
			float64(v.Rows-1) / 2,
			float64(v.Slices-1) / 2,
		},
		Normal: mgl64.Vec3{0, 0, 1},
		U:      mgl64.Vec3{1, 0, 0},
		V:      mgl64.Vec3{0, 1, 0},
	}
}

// RotateAroundAxis rotates the whole frame (normal, U, V) by angle
// radians around the given axis and re-orthonormalizes to stop drift
// from accumulating.
func (p *ObliquePlane) RotateAroundAxis(axis mgl64.Vec3, angle float64) {
	q := geom.AxisAngle(axis, angle)
	p.Normal = geom.Rotate(q, p.Normal)
	p.U = geom.Rotate(q, p.U)
	p.V = geom.Rotate(q, p.V)
	p.orthonormalize()
}

// RotateInPlane spins U and V around the normal.
func (p *ObliquePlane) RotateInPlane(angle float64) {
	q := geom.AxisAngle(p.Normal, angle)
	p.U = geom.Rotate(q, p.U)
	p.V = geom.Rotate(q, p.V)
	p.Rotation += angle
	p.orthonormalize()
}

// Translate moves the center along the normal by d voxels.
func (p *ObliquePlane) Translate(d float64) {
	p.Center = p.Center.Add(p.Normal.Mul(d))
}

// orthonormalize rebuilds {U, V, Normal} as an exact orthonormal triad
// via Gram-Schmidt, keeping Normal's direction.
func (p *ObliquePlane) orthonormalize() {
	p.Normal = geom.Normalize(p.Normal)
	p.U = geom.Normalize(p.U.Sub(p.Normal.Mul(geom.Dot(p.U, p.Normal))))
	p.V = geom.Cross(p.Normal, p.U)
}

// Sample resamples the volume on a w×h raster centered on the plane
// center. Pixel (u,v) maps to
//
//	center + (u-(w-1)/2)·U + (v-(h-1)/2)·V
//
// trilinearly interpolated and rounded to the nearest int16. Samples
// outside the volume land on the air sentinel through GetVoxel.
func (p *ObliquePlane) Sample(v *volume.Volume, w, h int) []int16 {
	out := make([]int16, w*h)
	halfW := float64(w-1) / 2
	halfH := float64(h-1) / 2
	for row := 0; row < h; row++ {
		dv := p.V.Mul(float64(row) - halfH)
		base := p.Center.Add(dv)
		for col := 0; col < w; col++ {
			pos := base.Add(p.U.Mul(float64(col) - halfW))
			out[row*w+col] = int16(math.Round(v.Trilerp(pos.X(), pos.Y(), pos.Z())))
		}
	}
	return out
}
