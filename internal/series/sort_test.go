package series

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSortSlicesByPosition(t *testing.T) {
	instances := axialStack(3, 2)
	// Shuffle: feed z = 4, 0, 2.
	shuffled := []Instance{instances[2], instances[0], instances[1]}

	geo := SortSlicesByPosition(shuffled)

	wantPositions := []float64{0, 2, 4}
	for i, p := range geo.Positions {
		if math.Abs(p-wantPositions[i]) > 1e-12 {
			t.Errorf("position %d = %v, want %v", i, p, wantPositions[i])
		}
	}
	if !geo.Normal.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("normal = %v, want (0,0,1)", geo.Normal)
	}
	if !geo.SliceDir.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("sliceDir = %v, want (0,0,1)", geo.SliceDir)
	}
	if math.Abs(geo.Spacing-2) > 1e-12 {
		t.Errorf("spacing = %v, want 2", geo.Spacing)
	}
}

func TestSortIsMonotonic(t *testing.T) {
	instances := axialStack(9, 1.5)
	// Reverse to force work.
	for i, j := 0, len(instances)-1; i < j; i, j = i+1, j-1 {
		instances[i], instances[j] = instances[j], instances[i]
	}
	geo := SortSlicesByPosition(instances)
	for i := 1; i < len(geo.Positions); i++ {
		if geo.Positions[i] < geo.Positions[i-1] {
			t.Fatalf("positions not monotonic at %d: %v", i, geo.Positions)
		}
	}
}

func TestSortStableOnTies(t *testing.T) {
	instances := axialStack(3, 0) // all at z=0
	instances[0].SOPInstanceUID = "first"
	instances[1].SOPInstanceUID = "second"
	instances[2].SOPInstanceUID = "third"

	geo := SortSlicesByPosition(instances)

	want := []string{"first", "second", "third"}
	for i, inst := range geo.Sorted {
		if inst.SOPInstanceUID != want[i] {
			t.Errorf("sorted[%d] = %s, want %s", i, inst.SOPInstanceUID, want[i])
		}
	}
}

func TestSortDescendingStack(t *testing.T) {
	// Feet-first stack: origins walk in -z while the orientation normal
	// stays +z, so the sorted order flips and sliceDir follows it.
	instances := axialStack(3, 2)
	for i := range instances {
		instances[i].Position = mgl64.Vec3{0, 0, -float64(i) * 2}
	}
	geo := SortSlicesByPosition(instances)
	if geo.Positions[0] != -4 || geo.Positions[2] != 0 {
		t.Errorf("positions = %v, want ascending from -4", geo.Positions)
	}
	if !geo.SliceDir.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("sliceDir = %v, want (0,0,1)", geo.SliceDir)
	}
}

func TestMedianOf(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{[]float64{2}, 2},
		{[]float64{3, 1}, 2},
		{[]float64{5, 1, 3}, 3},
		{[]float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		if got := medianOf(tt.in); got != tt.want {
			t.Errorf("medianOf(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
