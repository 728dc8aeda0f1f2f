// Package volume assembles sorted DICOM slices into a signed 16-bit
// voxel volume and provides voxel-level access for the samplers.
package volume

import (
	"github.com/go-gl/mathgl/mgl64"
)

// AirHU is returned for samples outside the volume. -1000 HU is air.
const AirHU int16 = -1000

// Volume is an immutable 3D block of Hounsfield values. Data is laid
// out z-major, then row-major: voxel (x,y,z) lives at index
// z*Cols*Rows + y*Cols + x.
type Volume struct {
	Cols   int
	Rows   int
	Slices int

	// Spacing is the voxel pitch (sx, sy, sz) in mm; sz is the median
	// inter-slice distance.
	Spacing [3]float64

	// Origin is the patient-space position of voxel (0,0,0).
	Origin mgl64.Vec3

	RowDir   mgl64.Vec3
	ColDir   mgl64.Vec3
	SliceDir mgl64.Vec3

	Data []int16

	// Display defaults inherited from the first instance.
	WindowCenter float64
	WindowWidth  float64

	// Observed HU range after rescale.
	MinHU int16
	MaxHU int16
}

// Index returns the buffer offset of voxel (x,y,z). The coordinate must
// be in bounds.
func (v *Volume) Index(x, y, z int) int {
	return z*v.Cols*v.Rows + y*v.Cols + x
}

// GetVoxel returns the voxel at (x,y,z), or AirHU when the coordinate
// is outside the volume.
func (v *Volume) GetVoxel(x, y, z int) int16 {
	if x < 0 || x >= v.Cols || y < 0 || y >= v.Rows || z < 0 || z >= v.Slices {
		return AirHU
	}
	return v.Data[v.Index(x, y, z)]
}

// Trilerp samples the volume at a fractional voxel coordinate using
// standard 8-corner trilinear interpolation. Corners outside the volume
// contribute AirHU. At integer coordinates the result equals GetVoxel.
func (v *Volume) Trilerp(x, y, z float64) float64 {
	x0, y0, z0 := floorInt(x), floorInt(y), floorInt(z)
	fx, fy, fz := x-float64(x0), y-float64(y0), z-float64(z0)

	c000 := float64(v.GetVoxel(x0, y0, z0))
	c100 := float64(v.GetVoxel(x0+1, y0, z0))
	c010 := float64(v.GetVoxel(x0, y0+1, z0))
	c110 := float64(v.GetVoxel(x0+1, y0+1, z0))
	c001 := float64(v.GetVoxel(x0, y0, z0+1))
	c101 := float64(v.GetVoxel(x0+1, y0, z0+1))
	c011 := float64(v.GetVoxel(x0, y0+1, z0+1))
	c111 := float64(v.GetVoxel(x0+1, y0+1, z0+1))

	c00 := c000*(1-fx) + c100*fx
	c10 := c010*(1-fx) + c110*fx
	c01 := c001*(1-fx) + c101*fx
	c11 := c011*(1-fx) + c111*fx

	c0 := c00*(1-fy) + c10*fy
	c1 := c01*(1-fy) + c11*fy

	return c0*(1-fz) + c1*fz
}

// SizeBytes returns the pixel buffer size in bytes.
func (v *Volume) SizeBytes() int {
	return v.Cols * v.Rows * v.Slices * 2
}

// PhysicalExtent returns the bounding box of the volume in mm.
func (v *Volume) PhysicalExtent() (w, h, d float64) {
	return float64(v.Cols) * v.Spacing[0],
		float64(v.Rows) * v.Spacing[1],
		float64(v.Slices) * v.Spacing[2]
}

func floorInt(f float64) int {
	i := int(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return i
}
