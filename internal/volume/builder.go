package volume

import (
	"context"
	"fmt"

	"github.com/prateek-tiwarii/synpacs/internal/series"
)

// FetchFunc pulls the raw DICOM bytes of one instance.
type FetchFunc func(ctx context.Context, inst series.Instance) ([]byte, error)

// ProgressFunc is called after each packed slice with the number of
// slices loaded so far and the total.
type ProgressFunc func(loaded, total int)

// ShapeMismatchError reports an instance whose decoded pixel matrix
// does not match the series dimensions.
type ShapeMismatchError struct {
	SOPInstanceUID string
	GotCols        int
	GotRows        int
	WantCols       int
	WantRows       int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("instance %s decoded to %dx%d, series is %dx%d",
		e.SOPInstanceUID, e.GotCols, e.GotRows, e.WantCols, e.WantRows)
}

// AllocationError reports a volume buffer that exceeds the allocation
// budget.
type AllocationError struct {
	Bytes int
	Limit int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("volume allocation of %d bytes exceeds limit of %d bytes", e.Bytes, e.Limit)
}

// DefaultMaxVolumeBytes bounds a single volume buffer at 2 GiB.
const DefaultMaxVolumeBytes = 2 << 30

// Default display window applied when the series carries none.
const (
	defaultWindowCenter = 40
	defaultWindowWidth  = 400
)

// Builder assembles a Volume from a sorted series. Fetch supplies raw
// instance bytes; MaxBytes guards the buffer allocation (0 means
// DefaultMaxVolumeBytes).
type Builder struct {
	Fetch    FetchFunc
	MaxBytes int
}

// Build fetches, decodes, rescales and packs every slice of the sorted
// stack into one contiguous int16 buffer. progress may be nil. Any
// per-instance failure aborts the build and the partial buffer is
// released.
func (b *Builder) Build(ctx context.Context, geo series.StackGeometry, progress ProgressFunc) (*Volume, error) {
	if b.Fetch == nil {
		return nil, fmt.Errorf("builder has no fetch function")
	}
	if len(geo.Sorted) == 0 {
		return nil, fmt.Errorf("empty series")
	}

	first := geo.Sorted[0]
	cols, rows, slices := first.Columns, first.Rows, len(geo.Sorted)

	limit := b.MaxBytes
	if limit == 0 {
		limit = DefaultMaxVolumeBytes
	}
	wantBytes := cols * rows * slices * 2
	if wantBytes > limit {
		return nil, &AllocationError{Bytes: wantBytes, Limit: limit}
	}

	vol := &Volume{
		Cols:     cols,
		Rows:     rows,
		Slices:   slices,
		Spacing:  [3]float64{first.PixelSpacing[0], first.PixelSpacing[1], geo.Spacing},
		Origin:   first.Position,
		RowDir:   first.RowDir,
		ColDir:   first.ColDir,
		SliceDir: geo.SliceDir,
		Data:     make([]int16, cols*rows*slices),
	}

	vol.WindowCenter, vol.WindowWidth = first.WindowCenter, first.WindowWidth
	if vol.WindowWidth <= 0 {
		vol.WindowCenter, vol.WindowWidth = defaultWindowCenter, defaultWindowWidth
	}

	minHU, maxHU := int16(32767), int16(-32768)
	sliceLen := cols * rows

	for z, inst := range geo.Sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := b.Fetch(ctx, inst)
		if err != nil {
			return nil, fmt.Errorf("fetch instance %s: %w", inst.SOPInstanceUID, err)
		}

		raw, gotCols, gotRows, err := decodeInstancePixels(data)
		if err != nil {
			return nil, fmt.Errorf("decode instance %s: %w", inst.SOPInstanceUID, err)
		}
		if gotCols != cols || gotRows != rows {
			return nil, &ShapeMismatchError{
				SOPInstanceUID: inst.SOPInstanceUID,
				GotCols:        gotCols, GotRows: gotRows,
				WantCols: cols, WantRows: rows,
			}
		}

		dst := vol.Data[z*sliceLen : (z+1)*sliceLen]
		for i, rv := range raw {
			hu := rescaleToHU(rv, inst.RescaleSlope, inst.RescaleIntercept)
			dst[i] = hu
			if hu < minHU {
				minHU = hu
			}
			if hu > maxHU {
				maxHU = hu
			}
		}

		if progress != nil {
			progress(z+1, slices)
		}
	}

	vol.MinHU, vol.MaxHU = minHU, maxHU
	return vol, nil
}

// rescaleToHU applies value = raw·slope + intercept and clamps to the
// signed 16-bit range. A zero slope is treated as identity.
func rescaleToHU(raw float64, slope, intercept float64) int16 {
	if slope == 0 {
		slope = 1
	}
	v := raw*slope + intercept
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	// Round to nearest.
	if v >= 0 {
		return int16(v + 0.5)
	}
	return int16(v - 0.5)
}
