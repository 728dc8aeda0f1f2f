package series

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/prateek-tiwarii/synpacs/internal/geom"
)

// StackGeometry is the result of ordering a series along its scan
// normal.
type StackGeometry struct {
	// Sorted holds the instances in ascending order of projected
	// position. Ties keep input order.
	Sorted []Instance
	// Normal is the unit scan normal rowDir × colDir of the first
	// instance.
	Normal mgl64.Vec3
	// SliceDir is the normal signed so it points from the first sorted
	// slice toward the last.
	SliceDir mgl64.Vec3
	// Spacing is the median inter-slice distance in mm.
	Spacing float64
	// Positions are the projected positions of the sorted instances.
	Positions []float64
}

// SortSlicesByPosition orders instances along the scan normal computed
// from the first instance. The sort is stable: instances whose origins
// project to the same position keep their input order.
func SortSlicesByPosition(instances []Instance) StackGeometry {
	if len(instances) == 0 {
		return StackGeometry{Normal: mgl64.Vec3{0, 0, 1}, SliceDir: mgl64.Vec3{0, 0, 1}}
	}

	n := geom.Normalize(geom.Cross(instances[0].RowDir, instances[0].ColDir))

	sorted := append([]Instance(nil), instances...)
	positions := projectedPositions(sorted, n)

	// Sort instances and their projections together, stably.
	idx := make([]int, len(sorted))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return positions[idx[a]] < positions[idx[b]]
	})

	outInstances := make([]Instance, len(sorted))
	outPositions := make([]float64, len(sorted))
	for i, j := range idx {
		outInstances[i] = sorted[j]
		outPositions[i] = positions[j]
	}

	var spacing float64
	if len(outPositions) > 1 {
		diffs := make([]float64, len(outPositions)-1)
		for i := range diffs {
			diffs[i] = outPositions[i+1] - outPositions[i]
		}
		spacing = medianOf(diffs)
	}

	sliceDir := n
	if len(outPositions) > 1 && outPositions[len(outPositions)-1] < outPositions[0] {
		sliceDir = n.Mul(-1)
	}

	return StackGeometry{
		Sorted:    outInstances,
		Normal:    n,
		SliceDir:  sliceDir,
		Spacing:   spacing,
		Positions: outPositions,
	}
}

func projectedPositions(instances []Instance, n mgl64.Vec3) []float64 {
	positions := make([]float64, len(instances))
	for i, inst := range instances {
		positions[i] = geom.Dot(inst.Position, n)
	}
	return positions
}

func sortFloats(v []float64) { sort.Float64s(v) }

// medianOf returns the median of v. v is not modified.
func medianOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	tmp := append([]float64(nil), v...)
	sort.Float64s(tmp)
	mid := len(tmp) / 2
	if len(tmp)%2 == 0 {
		return (tmp[mid-1] + tmp[mid]) / 2
	}
	return tmp[mid]
}
