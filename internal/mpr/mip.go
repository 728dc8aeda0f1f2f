package mpr

import (
	"math"

	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

// ExtractMIP computes a thin-slab maximum-intensity projection across
// the slab [center-halfSize, center+halfSize], clipped to the volume.
// A half size of 0 is identical to ExtractSlice at the same index.
//
// The axial slab is seeded from its first slice (every output pixel is
// covered by every slab member, so the copy is cheap and correct);
// coronal and sagittal slabs are seeded with the smallest int16 so
// negative HU survives the max.
func ExtractMIP(v *volume.Volume, p Plane, center float64, halfSize int) []int16 {
	if halfSize < 0 {
		halfSize = 0
	}
	count := SliceCount(v, p)
	c := clampIndex(center, count)
	lo, hi := c-halfSize, c+halfSize
	if lo < 0 {
		lo = 0
	}
	if hi > count-1 {
		hi = count - 1
	}

	geo := PlaneGeometry(v, p)
	out := make([]int16, geo.Width*geo.Height)

	switch p {
	case Axial:
		copy(out, v.Data[lo*v.Cols*v.Rows:(lo+1)*v.Cols*v.Rows])
		for z := lo + 1; z <= hi; z++ {
			plane := v.Data[z*v.Cols*v.Rows : (z+1)*v.Cols*v.Rows]
			for i, hu := range plane {
				if hu > out[i] {
					out[i] = hu
				}
			}
		}

	case Coronal:
		for i := range out {
			out[i] = math.MinInt16
		}
		for y := lo; y <= hi; y++ {
			for z := 0; z < v.Slices; z++ {
				row := (v.Slices - 1 - z) * v.Cols
				src := z*v.Cols*v.Rows + y*v.Cols
				for x := 0; x < v.Cols; x++ {
					if hu := v.Data[src+x]; hu > out[row+x] {
						out[row+x] = hu
					}
				}
			}
		}

	case Sagittal:
		for i := range out {
			out[i] = math.MinInt16
		}
		for x := lo; x <= hi; x++ {
			for z := 0; z < v.Slices; z++ {
				row := (v.Slices - 1 - z) * v.Rows
				for y := 0; y < v.Rows; y++ {
					if hu := v.Data[v.Index(x, y, z)]; hu > out[row+y] {
						out[row+y] = hu
					}
				}
			}
		}
	}
	return out
}
