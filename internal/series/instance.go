// Package series models the per-slice DICOM metadata of an image series
// and decides whether a series can be stacked into a volume.
package series

import "github.com/go-gl/mathgl/mgl64"

// Instance holds the geometry and display metadata of a single 2D slice.
// Positions and spacings are millimeters in the patient coordinate
// system; RowDir and ColDir are the unit direction vectors of the image
// rows and columns (ImageOrientationPatient).
type Instance struct {
	SOPInstanceUID string

	Rows    int
	Columns int

	PixelSpacing   [2]float64 // (sx, sy) mm
	SliceThickness float64

	Position mgl64.Vec3 // ImagePositionPatient: origin of the top-left pixel
	RowDir   mgl64.Vec3
	ColDir   mgl64.Vec3

	WindowCenter float64
	WindowWidth  float64

	RescaleSlope     float64
	RescaleIntercept float64

	Photometric string
	Modality    string

	// FrameURL is the handle the pixel bytes are pulled from.
	FrameURL string
}

// SeriesInfo is a series-level envelope: identifying fields plus the
// instance records. The dicomweb client does not fill it; its metadata
// fetch returns the instance records alone.
type SeriesInfo struct {
	SeriesInstanceUID string
	SeriesNumber      int
	Description       string
	Instances         []Instance
}
