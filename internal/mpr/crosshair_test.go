package mpr

import (
	"testing"

	"github.com/prateek-tiwarii/synpacs/internal/volume"
)

func bigVolume() *volume.Volume {
	return &volume.Volume{
		Cols: 64, Rows: 48, Slices: 32,
		Data: make([]int16, 64*48*32),
	}
}

func TestUpdateFromClickTable(t *testing.T) {
	v := bigVolume()
	tests := []struct {
		name    string
		plane   Plane
		cx, cy  float64
		start   Crosshair
		want    Crosshair
	}{
		{"axial center", Axial, 0.5, 0.5, Crosshair{Z: 7}, Crosshair{X: 32, Y: 24, Z: 7}},
		{"axial origin", Axial, 0, 0, Crosshair{Z: 3}, Crosshair{X: 0, Y: 0, Z: 3}},
		{"coronal top is superior", Coronal, 0, 0, Crosshair{Y: 9}, Crosshair{X: 0, Y: 9, Z: 31}},
		{"coronal bottom", Coronal, 1, 1, Crosshair{Y: 9}, Crosshair{X: 63, Y: 9, Z: 0}},
		{"sagittal maps cx to y", Sagittal, 1, 0, Crosshair{X: 5}, Crosshair{X: 5, Y: 47, Z: 31}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.start
			c.UpdateFromClick(tt.plane, tt.cx, tt.cy, v)
			if c != tt.want {
				t.Errorf("crosshair = %+v, want %+v", c, tt.want)
			}
		})
	}
}

func TestScreenPositionInverseOfClick(t *testing.T) {
	v := bigVolume()
	for _, p := range []Plane{Axial, Coronal, Sagittal} {
		for _, click := range [][2]float64{{0, 0}, {1, 1}, {0.25, 0.75}, {0.5, 0.5}, {0.99, 0.01}} {
			c := NewCrosshair(v)
			c.UpdateFromClick(p, click[0], click[1], v)
			cx, cy := c.ScreenPosition(p, v)
			c2 := c
			c2.UpdateFromClick(p, cx, cy, v)
			if c2 != c {
				t.Errorf("%s click %v: round trip %+v -> (%v,%v) -> %+v", p, click, c, cx, cy, c2)
			}
		}
	}
}

func TestCrosshairClamped(t *testing.T) {
	v := bigVolume()
	c := Crosshair{X: -5, Y: 500, Z: 31}
	c.Clamp(v)
	if c != (Crosshair{X: 0, Y: 47, Z: 31}) {
		t.Errorf("clamped = %+v", c)
	}

	c.UpdateFromClick(Axial, 2.0, -1.0, v) // out-of-range clicks clamp too
	if c.X != 63 || c.Y != 0 {
		t.Errorf("clamped click = %+v", c)
	}
}

func TestSliceIndexPerPlane(t *testing.T) {
	c := Crosshair{X: 1, Y: 2, Z: 3}
	if c.SliceIndex(Axial) != 3 || c.SliceIndex(Coronal) != 2 || c.SliceIndex(Sagittal) != 1 {
		t.Errorf("slice indexes = %d/%d/%d", c.SliceIndex(Axial), c.SliceIndex(Coronal), c.SliceIndex(Sagittal))
	}
}

func TestSingleSliceVolumeDoesNotDivideByZero(t *testing.T) {
	v := &volume.Volume{Cols: 4, Rows: 4, Slices: 1, Data: make([]int16, 16)}
	c := NewCrosshair(v)
	c.UpdateFromClick(Coronal, 0.5, 0.5, v)
	if _, cy := c.ScreenPosition(Coronal, v); cy != 1 {
		// z ratio of a one-slice volume is 0; inverted it draws at 1.
		t.Errorf("cy = %v, want 1", cy)
	}
}
