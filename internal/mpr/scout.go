package mpr

import "sort"

// PaneState is the UI-boundary description of one viewing pane: which
// series it shows, in which plane, and where its slider sits.
type PaneState struct {
	SeriesID     string
	Plane        Plane
	CurrentIndex int
	Total        int

	// Derived marks a pane bound to a generated MPR series rather than
	// a native one.
	Derived bool
}

// ScoutOrientation is the direction a scout line is drawn in the
// target pane.
type ScoutOrientation int

const (
	Horizontal ScoutOrientation = iota
	Vertical
)

// ScoutLine is one cross-reference line: where a peer pane is
// currently slicing through the shared volume, as a normalized ratio
// across the target pane.
type ScoutLine struct {
	Orientation ScoutOrientation
	Ratio       float64
}

// ScoutLineFor derives the line pane source contributes to pane
// target. Both panes must show the same source volume; the caller
// checks that. The second return is false when the source has no
// meaningful position (empty series).
func ScoutLineFor(source, target PaneState) (ScoutLine, bool) {
	if source.Total <= 0 {
		return ScoutLine{}, false
	}
	ratio := 0.0
	if source.Total > 1 {
		ratio = float64(source.CurrentIndex) / float64(source.Total-1)
	}

	if source.Plane == target.Plane {
		return ScoutLine{Orientation: Horizontal, Ratio: ratio}, true
	}

	orientation, invert := scoutMapping(source.Plane, target.Plane)
	if invert {
		ratio = 1 - ratio
	}
	return ScoutLine{Orientation: orientation, Ratio: ratio}, true
}

// scoutMapping encodes the source-plane → target-plane line table. The
// inverted pairs are the ones whose target draws z flipped (superior at
// the top).
func scoutMapping(source, target Plane) (ScoutOrientation, bool) {
	switch source {
	case Axial:
		// Axial position is z; coronal and sagittal both draw z
		// vertically, flipped.
		return Horizontal, true
	case Coronal:
		if target == Axial {
			// Coronal position is y; axial draws y vertically, unflipped.
			return Horizontal, false
		}
		// Sagittal draws y horizontally.
		return Vertical, false
	default: // Sagittal
		// Sagittal position is x; axial and coronal both draw x
		// horizontally.
		return Vertical, false
	}
}

// SeriesSummary is the minimal listing entry auto-skip works over.
type SeriesSummary struct {
	SeriesID      string
	SeriesNumber  int
	InstanceCount int
}

// NextNonEmptySeries picks the first series with instances, in
// ascending series-number order, starting after the series numbered
// afterNumber. Pass a negative afterNumber to start from the
// beginning. Returns false when every candidate is empty.
func NextNonEmptySeries(all []SeriesSummary, afterNumber int) (SeriesSummary, bool) {
	sorted := append([]SeriesSummary(nil), all...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SeriesNumber < sorted[j].SeriesNumber
	})
	for _, s := range sorted {
		if s.SeriesNumber > afterNumber && s.InstanceCount > 0 {
			return s, true
		}
	}
	return SeriesSummary{}, false
}
