package mpr

import (
	"context"

	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

// ExtractSlice resamples one orthogonal slice. The index is rounded and
// clamped to the plane's slice range. For coronal and sagittal output
// the z axis is flipped so superior anatomy appears at the top of the
// screen.
func ExtractSlice(v *volume.Volume, p Plane, index float64) []int16 {
	geo := PlaneGeometry(v, p)
	out := make([]int16, geo.Width*geo.Height)

	switch p {
	case Axial:
		z := clampIndex(index, v.Slices)
		copy(out, v.Data[z*v.Cols*v.Rows:(z+1)*v.Cols*v.Rows])

	case Coronal:
		y := clampIndex(index, v.Rows)
		for z := 0; z < v.Slices; z++ {
			row := (v.Slices - 1 - z) * v.Cols
			src := z*v.Cols*v.Rows + y*v.Cols
			copy(out[row:row+v.Cols], v.Data[src:src+v.Cols])
		}

	case Sagittal:
		x := clampIndex(index, v.Cols)
		for z := 0; z < v.Slices; z++ {
			row := (v.Slices - 1 - z) * v.Rows
			for y := 0; y < v.Rows; y++ {
				out[row+y] = v.Data[v.Index(x, y, z)]
			}
		}
	}
	return out
}

// DerivedSeries is a fully precomputed MPR stack for one plane, the
// backing data of a derived pane.
type DerivedSeries struct {
	Plane  Plane
	Width  int
	Height int
	Pixels [][]int16
}

// yieldEvery is how many slices are generated between cancellation
// checks and progress callbacks.
const yieldEvery = 10

// GenerateSeries precomputes every slice of plane p. It checks ctx and
// reports progress every 10 slices so a UI loop stays responsive during
// generation. progress may be nil.
func GenerateSeries(ctx context.Context, v *volume.Volume, p Plane, progress func(done, total int)) (*DerivedSeries, error) {
	geo := PlaneGeometry(v, p)
	total := SliceCount(v, p)
	ds := &DerivedSeries{
		Plane:  p,
		Width:  geo.Width,
		Height: geo.Height,
		Pixels: make([][]int16, total),
	}
	for i := 0; i < total; i++ {
		if i%yieldEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if progress != nil {
				progress(i, total)
			}
		}
		ds.Pixels[i] = ExtractSlice(v, p, float64(i))
	}
	if progress != nil {
		progress(total, total)
	}
	return ds, nil
}
