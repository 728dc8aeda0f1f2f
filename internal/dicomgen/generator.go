// Package dicomgen synthesizes geometry-controlled CT series as real
// DICOM byte streams. The viewer tests and the CLI demo mode use it in
// place of a live PACS: every generated instance round-trips through
// the same decode path as fetched data.
package dicomgen

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	randv2 "math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/prateek-tiwarii/synpacs/internal/series"
)

// PatternFunc produces the raw (pre-rescale) pixel value of voxel
// (x, y, z).
type PatternFunc func(x, y, z int) uint16

// StackOptions parameterizes one synthetic series.
type StackOptions struct {
	Cols      int
	Rows      int
	NumSlices int

	PixelSpacing         [2]float64
	SliceThickness       float64
	SpacingBetweenSlices float64
	Origin               [3]float64

	WindowCenter     float64
	WindowWidth      float64
	RescaleSlope     float64
	RescaleIntercept float64

	Seed int64

	// Pattern overrides the default phantom. Nil uses a noisy
	// radial phantom seeded from Seed.
	Pattern PatternFunc
}

func (o *StackOptions) applyDefaults() {
	if o.Cols == 0 {
		o.Cols = 64
	}
	if o.Rows == 0 {
		o.Rows = 64
	}
	if o.NumSlices == 0 {
		o.NumSlices = 16
	}
	if o.PixelSpacing == ([2]float64{}) {
		o.PixelSpacing = [2]float64{0.5, 0.5}
	}
	if o.SliceThickness == 0 {
		o.SliceThickness = 1
	}
	if o.SpacingBetweenSlices == 0 {
		o.SpacingBetweenSlices = o.SliceThickness
	}
	if o.WindowWidth == 0 {
		o.WindowCenter, o.WindowWidth = 40, 400
	}
	if o.RescaleSlope == 0 {
		o.RescaleSlope = 1
		o.RescaleIntercept = -1024
	}
	if o.Pattern == nil {
		o.Pattern = radialPhantom(*o)
	}
}

// Stack is a complete synthetic series: the metadata records plus the
// encoded byte stream of every instance, keyed by SOP instance UID.
type Stack struct {
	SeriesUID string
	Instances []series.Instance
	Bytes     map[string][]byte
}

// Fetch serves the generated byte streams in place of the network. It
// takes no context, so callers wrap it in a closure to use it as the
// volume builder's fetch function.
func (s *Stack) Fetch(inst series.Instance) ([]byte, error) {
	b, ok := s.Bytes[inst.SOPInstanceUID]
	if !ok {
		return nil, fmt.Errorf("unknown instance %s", inst.SOPInstanceUID)
	}
	return b, nil
}

// GenerateStack builds an axial CT stack: identical orientation and
// spacing across slices, positions walking +z from the origin.
func GenerateStack(opts StackOptions) (*Stack, error) {
	opts.applyDefaults()

	seriesUID := deterministicUID(fmt.Sprintf("series_%d", opts.Seed))
	stack := &Stack{
		SeriesUID: seriesUID,
		Bytes:     make(map[string][]byte, opts.NumSlices),
	}

	for z := 0; z < opts.NumSlices; z++ {
		sopUID := deterministicUID(fmt.Sprintf("series_%d_instance_%d", opts.Seed, z))
		position := mgl64.Vec3{
			opts.Origin[0],
			opts.Origin[1],
			opts.Origin[2] + float64(z)*opts.SpacingBetweenSlices,
		}

		data, err := encodeInstance(opts, seriesUID, sopUID, z, position)
		if err != nil {
			return nil, fmt.Errorf("encode slice %d: %w", z, err)
		}

		stack.Instances = append(stack.Instances, series.Instance{
			SOPInstanceUID:   sopUID,
			Rows:             opts.Rows,
			Columns:          opts.Cols,
			PixelSpacing:     opts.PixelSpacing,
			SliceThickness:   opts.SliceThickness,
			Position:         position,
			RowDir:           mgl64.Vec3{1, 0, 0},
			ColDir:           mgl64.Vec3{0, 1, 0},
			WindowCenter:     opts.WindowCenter,
			WindowWidth:      opts.WindowWidth,
			RescaleSlope:     opts.RescaleSlope,
			RescaleIntercept: opts.RescaleIntercept,
			Photometric:      "MONOCHROME2",
			Modality:         "CT",
		})
		stack.Bytes[sopUID] = data
	}
	return stack, nil
}

// encodeInstance writes one slice as an Explicit VR Little Endian
// DICOM stream.
func encodeInstance(opts StackOptions, seriesUID, sopUID string, z int, position mgl64.Vec3) ([]byte, error) {
	nativeFrame := frame.NewNativeFrame[uint16](16, opts.Rows, opts.Cols, opts.Rows*opts.Cols, 1)
	for y := 0; y < opts.Rows; y++ {
		for x := 0; x < opts.Cols; x++ {
			nativeFrame.RawData[y*opts.Cols+x] = opts.Pattern(x, y, z)
		}
	}

	pixelDataInfo := dicom.PixelDataInfo{
		Frames: []*frame.Frame{
			{
				Encapsulated: false,
				NativeData:   nativeFrame,
			},
		},
	}

	elements := []*dicom.Element{
		mustNewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
		mustNewElement(tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.2"}),
		mustNewElement(tag.SOPInstanceUID, []string{sopUID}),
		mustNewElement(tag.SeriesInstanceUID, []string{seriesUID}),
		mustNewElement(tag.Modality, []string{"CT"}),
		mustNewElement(tag.InstanceNumber, []string{fmt.Sprintf("%d", z+1)}),
		mustNewElement(tag.PixelSpacing, []string{
			fmt.Sprintf("%.6f", opts.PixelSpacing[0]),
			fmt.Sprintf("%.6f", opts.PixelSpacing[1]),
		}),
		mustNewElement(tag.SliceThickness, []string{fmt.Sprintf("%.6f", opts.SliceThickness)}),
		mustNewElement(tag.SpacingBetweenSlices, []string{fmt.Sprintf("%.6f", opts.SpacingBetweenSlices)}),
		mustNewElement(tag.ImagePositionPatient, []string{
			fmt.Sprintf("%.6f", position.X()),
			fmt.Sprintf("%.6f", position.Y()),
			fmt.Sprintf("%.6f", position.Z()),
		}),
		mustNewElement(tag.ImageOrientationPatient, []string{"1", "0", "0", "0", "1", "0"}),
		mustNewElement(tag.WindowCenter, []string{fmt.Sprintf("%.1f", opts.WindowCenter)}),
		mustNewElement(tag.WindowWidth, []string{fmt.Sprintf("%.1f", opts.WindowWidth)}),
		mustNewElement(tag.RescaleSlope, []string{fmt.Sprintf("%.6f", opts.RescaleSlope)}),
		mustNewElement(tag.RescaleIntercept, []string{fmt.Sprintf("%.6f", opts.RescaleIntercept)}),
		mustNewElement(tag.Rows, []int{opts.Rows}),
		mustNewElement(tag.Columns, []int{opts.Cols}),
		mustNewElement(tag.BitsAllocated, []int{16}),
		mustNewElement(tag.BitsStored, []int{16}),
		mustNewElement(tag.HighBit, []int{15}),
		mustNewElement(tag.PixelRepresentation, []int{0}),
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustNewElement(tag.PixelData, pixelDataInfo),
	}

	var buf bytes.Buffer
	if err := dicom.Write(&buf, dicom.Dataset{Elements: elements}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// radialPhantom is the default slice content: a bright disc on a dark
// background with multi-scale noise, dense enough to exercise window
// presets.
func radialPhantom(opts StackOptions) PatternFunc {
	rng := randv2.New(randv2.NewPCG(uint64(opts.Seed), uint64(opts.Seed)))
	noise := make([]float64, opts.Cols*opts.Rows*opts.NumSlices)
	for i := range noise {
		noise[i] = (rng.Float64() - 0.5) * 200
	}

	centerX := float64(opts.Cols) / 2
	centerY := float64(opts.Rows) / 2
	radius := math.Min(centerX, centerY) * 0.8

	return func(x, y, z int) uint16 {
		dx := float64(x) - centerX
		dy := float64(y) - centerY
		dist := math.Sqrt(dx*dx + dy*dy)

		// Raw values sit around 1024 (water after -1024 rescale).
		value := 24.0 // air-ish background
		if dist < radius {
			value = 1024 + 1000*(1-dist/radius)
		}
		value += noise[(z*opts.Rows+y)*opts.Cols+x]

		if value < 0 {
			value = 0
		}
		if value > 65535 {
			value = 65535
		}
		return uint16(value)
	}
}

// mustNewElement creates a new DICOM element, panicking on error.
func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// deterministicUID derives a stable UID from a seed string, using the
// 2.25 numeric-UUID root.
func deterministicUID(seed string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return fmt.Sprintf("2.25.%d", h.Sum64())
}
