package series

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/prateek-tiwarii/synpacs/internal/geom"
)

// FailureKind classifies why a series cannot be stacked.
type FailureKind string

const (
	MixedDimensions   FailureKind = "MixedDimensions"
	MixedOrientation  FailureKind = "MixedOrientation"
	DegenerateNormal  FailureKind = "DegenerateNormal"
	NonUniformSpacing FailureKind = "NonUniformSpacing"
	TooFewSlices      FailureKind = "TooFewSlices"
)

// Failure is one reason the series failed validation.
type Failure struct {
	Kind   FailureKind
	Detail string
}

func (f Failure) String() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// ValidationError carries every failure detected in one pass. The caller
// may not build a volume from a series that failed validation.
type ValidationError struct {
	Failures []Failure
}

func (e *ValidationError) Error() string {
	reasons := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		reasons[i] = f.String()
	}
	return "series not stackable: " + strings.Join(reasons, "; ")
}

// Has reports whether the error contains a failure of the given kind.
func (e *ValidationError) Has(kind FailureKind) bool {
	for _, f := range e.Failures {
		if f.Kind == kind {
			return true
		}
	}
	return false
}

const (
	// directionTolerance bounds the per-component drift allowed between
	// orientation vectors of two instances.
	directionTolerance = 1e-4
	// minSlices is the smallest series worth stacking.
	minSlices = 2
)

// SpacingTolerance returns the allowed deviation of inter-slice
// distances from the median spacing: 1% of the median or 0.01 mm,
// whichever is greater.
func SpacingTolerance(medianSpacing float64) float64 {
	return math.Max(0.01, 0.01*math.Abs(medianSpacing))
}

// ValidateStackability checks that instances form a stackable volume:
// shared dimensions, spacing and rescale transform, a shared
// well-defined orientation, and uniformly spaced slice positions along
// the scan normal. It returns nil on success or a *ValidationError
// listing every detected failure.
func ValidateStackability(instances []Instance) error {
	var failures []Failure

	if len(instances) < minSlices {
		failures = append(failures, Failure{
			Kind:   TooFewSlices,
			Detail: fmt.Sprintf("got %d, need at least %d", len(instances), minSlices),
		})
		return &ValidationError{Failures: failures}
	}

	ref := instances[0]
	for i, inst := range instances[1:] {
		if inst.Rows != ref.Rows || inst.Columns != ref.Columns {
			failures = append(failures, Failure{
				Kind: MixedDimensions,
				Detail: fmt.Sprintf("instance %d is %dx%d, first is %dx%d",
					i+1, inst.Columns, inst.Rows, ref.Columns, ref.Rows),
			})
			break
		}
	}
	for i, inst := range instances[1:] {
		if math.Abs(inst.PixelSpacing[0]-ref.PixelSpacing[0]) > directionTolerance ||
			math.Abs(inst.PixelSpacing[1]-ref.PixelSpacing[1]) > directionTolerance {
			failures = append(failures, Failure{
				Kind:   MixedDimensions,
				Detail: fmt.Sprintf("pixel spacing of instance %d differs from first", i+1),
			})
			break
		}
	}
	for i, inst := range instances[1:] {
		if inst.RescaleSlope != ref.RescaleSlope || inst.RescaleIntercept != ref.RescaleIntercept {
			failures = append(failures, Failure{
				Kind:   MixedDimensions,
				Detail: fmt.Sprintf("rescale transform of instance %d differs from first", i+1),
			})
			break
		}
	}
	for i, inst := range instances[1:] {
		if !sameDirection(inst.RowDir, ref.RowDir) || !sameDirection(inst.ColDir, ref.ColDir) {
			failures = append(failures, Failure{
				Kind:   MixedOrientation,
				Detail: fmt.Sprintf("orientation of instance %d differs from first", i+1),
			})
			break
		}
	}

	normal := geom.Cross(ref.RowDir, ref.ColDir)
	if geom.IsDegenerate(normal) {
		failures = append(failures, Failure{Kind: DegenerateNormal})
		// Without a normal the spacing check is meaningless.
		return &ValidationError{Failures: failures}
	}

	if f, ok := checkSpacingUniformity(instances, geom.Normalize(normal)); !ok {
		failures = append(failures, f)
	}

	if len(failures) > 0 {
		return &ValidationError{Failures: failures}
	}
	return nil
}

func sameDirection(a, b mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) > directionTolerance {
			return false
		}
	}
	return true
}

// checkSpacingUniformity projects every instance origin onto the scan
// normal and verifies the sorted positions are strictly increasing and
// their first differences are uniform within SpacingTolerance of the
// median.
func checkSpacingUniformity(instances []Instance, n mgl64.Vec3) (Failure, bool) {
	positions := projectedPositions(instances, n)
	sorted := append([]float64(nil), positions...)
	sortFloats(sorted)

	diffs := make([]float64, len(sorted)-1)
	for i := range diffs {
		diffs[i] = sorted[i+1] - sorted[i]
	}
	median := medianOf(diffs)
	tol := SpacingTolerance(median)
	for i, d := range diffs {
		if d <= 0 || math.Abs(d-median) > tol {
			return Failure{
				Kind: NonUniformSpacing,
				Detail: fmt.Sprintf("gap %d is %.4f mm, median %.4f mm (tolerance %.4f mm)",
					i, d, median, tol),
			}, false
		}
	}
	return Failure{}, true
}
