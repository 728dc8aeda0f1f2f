package mpr

import (
	"math"
	"testing"
)

func TestScoutLineTable(t *testing.T) {
	// Source at index 3 of 11 slices: ratio 0.3.
	src := func(p Plane) PaneState { return PaneState{Plane: p, CurrentIndex: 3, Total: 11} }
	tgt := func(p Plane) PaneState { return PaneState{Plane: p, Total: 11} }

	tests := []struct {
		name        string
		source      Plane
		target      Plane
		orientation ScoutOrientation
		ratio       float64
	}{
		{"axial in coronal", Axial, Coronal, Horizontal, 0.7},
		{"axial in sagittal", Axial, Sagittal, Horizontal, 0.7},
		{"coronal in axial", Coronal, Axial, Horizontal, 0.3},
		{"coronal in sagittal", Coronal, Sagittal, Vertical, 0.3},
		{"sagittal in axial", Sagittal, Axial, Vertical, 0.3},
		{"sagittal in coronal", Sagittal, Coronal, Vertical, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok := ScoutLineFor(src(tt.source), tgt(tt.target))
			if !ok {
				t.Fatal("no scout line")
			}
			if line.Orientation != tt.orientation {
				t.Errorf("orientation = %v, want %v", line.Orientation, tt.orientation)
			}
			if math.Abs(line.Ratio-tt.ratio) > 1e-12 {
				t.Errorf("ratio = %v, want %v", line.Ratio, tt.ratio)
			}
		})
	}
}

func TestScoutLineSamePlane(t *testing.T) {
	line, ok := ScoutLineFor(
		PaneState{Plane: Axial, CurrentIndex: 5, Total: 21},
		PaneState{Plane: Axial, Total: 21},
	)
	if !ok || line.Orientation != Horizontal || math.Abs(line.Ratio-0.25) > 1e-12 {
		t.Errorf("same-plane line = %+v ok=%v, want horizontal 0.25", line, ok)
	}
}

func TestScoutLineEmptySource(t *testing.T) {
	if _, ok := ScoutLineFor(PaneState{Plane: Axial}, PaneState{Plane: Coronal, Total: 10}); ok {
		t.Error("empty source produced a line")
	}
}

func TestNextNonEmptySeries(t *testing.T) {
	all := []SeriesSummary{
		{SeriesID: "c", SeriesNumber: 3, InstanceCount: 10},
		{SeriesID: "a", SeriesNumber: 1, InstanceCount: 0},
		{SeriesID: "b", SeriesNumber: 2, InstanceCount: 0},
		{SeriesID: "d", SeriesNumber: 4, InstanceCount: 2},
	}

	got, ok := NextNonEmptySeries(all, -1)
	if !ok || got.SeriesID != "c" {
		t.Errorf("first non-empty = %+v ok=%v, want series c", got, ok)
	}

	got, ok = NextNonEmptySeries(all, 3)
	if !ok || got.SeriesID != "d" {
		t.Errorf("after 3 = %+v ok=%v, want series d", got, ok)
	}

	if _, ok := NextNonEmptySeries(all, 4); ok {
		t.Error("expected no series after the last")
	}
}
