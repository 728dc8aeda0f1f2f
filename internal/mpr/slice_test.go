package mpr

import (
	"context"
	"testing"

	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

// seqVolume is the 2x2x3 layout-check volume with data 1..12 and
// spacing (1,1,2).
func seqVolume() *volume.Volume {
	v := &volume.Volume{
		Cols: 2, Rows: 2, Slices: 3,
		Spacing: [3]float64{1, 1, 2},
		Data:    make([]int16, 12),
	}
	for i := range v.Data {
		v.Data[i] = int16(i + 1)
	}
	return v
}

func equalPixels(t *testing.T, got, want []int16) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixels = %v, want %v", got, want)
		}
	}
}

func TestExtractSliceAxial(t *testing.T) {
	v := seqVolume()
	got := ExtractSlice(v, Axial, 1)
	equalPixels(t, got, []int16{5, 6, 7, 8})
}

func TestExtractSliceCoronalFlip(t *testing.T) {
	// Voxel (0,0,2)=9 lands at output (0,0); voxel (0,0,0)=1 at (0,2).
	v := seqVolume()
	got := ExtractSlice(v, Coronal, 0)
	equalPixels(t, got, []int16{9, 10, 5, 6, 1, 2})
}

func TestExtractSliceSagittalFlip(t *testing.T) {
	v := seqVolume()
	got := ExtractSlice(v, Sagittal, 0)
	// x=0 column: voxels (0,y,z) = 1,3 / 5,7 / 9,11, z flipped.
	equalPixels(t, got, []int16{9, 11, 5, 7, 1, 3})
}

func TestExtractSliceClampsIndex(t *testing.T) {
	v := seqVolume()
	equalPixels(t, ExtractSlice(v, Axial, -7), ExtractSlice(v, Axial, 0))
	equalPixels(t, ExtractSlice(v, Axial, 99), ExtractSlice(v, Axial, 2))
	equalPixels(t, ExtractSlice(v, Axial, 0.4), ExtractSlice(v, Axial, 0))
	equalPixels(t, ExtractSlice(v, Axial, 0.6), ExtractSlice(v, Axial, 1))
}

func TestPlaneGeometryTable(t *testing.T) {
	v := seqVolume()
	tests := []struct {
		plane Plane
		want  Geometry
	}{
		{Axial, Geometry{Width: 2, Height: 2, SpacingX: 1, SpacingY: 1}},
		{Coronal, Geometry{Width: 2, Height: 3, SpacingX: 1, SpacingY: 2}},
		{Sagittal, Geometry{Width: 2, Height: 3, SpacingX: 1, SpacingY: 2}},
	}
	for _, tt := range tests {
		if got := PlaneGeometry(v, tt.plane); got != tt.want {
			t.Errorf("PlaneGeometry(%s) = %+v, want %+v", tt.plane, got, tt.want)
		}
	}
}

func TestExtractSliceDimensionsMatchGeometry(t *testing.T) {
	v := seqVolume()
	for _, p := range []Plane{Axial, Coronal, Sagittal} {
		geo := PlaneGeometry(v, p)
		for i := 0; i < SliceCount(v, p); i++ {
			if got := len(ExtractSlice(v, p, float64(i))); got != geo.Width*geo.Height {
				t.Errorf("%s slice %d has %d pixels, want %d", p, i, got, geo.Width*geo.Height)
			}
		}
	}
}

func TestGenerateSeries(t *testing.T) {
	v := seqVolume()
	var calls []int
	ds, err := GenerateSeries(context.Background(), v, Coronal, func(done, total int) {
		calls = append(calls, done)
	})
	if err != nil {
		t.Fatalf("GenerateSeries: %v", err)
	}
	if len(ds.Pixels) != v.Rows {
		t.Fatalf("generated %d slices, want %d", len(ds.Pixels), v.Rows)
	}
	equalPixels(t, ds.Pixels[0], ExtractSlice(v, Coronal, 0))
	if len(calls) == 0 || calls[len(calls)-1] != v.Rows {
		t.Errorf("progress calls = %v, want trailing total", calls)
	}
}

func TestGenerateSeriesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := GenerateSeries(ctx, seqVolume(), Axial, nil); err == nil {
		t.Fatal("cancelled generation returned nil error")
	}
}
