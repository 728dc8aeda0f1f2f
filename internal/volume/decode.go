package volume

import (
	"bytes"
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// DecodeError reports DICOM pixel data that could not be decoded.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return "decode pixel data: " + e.Reason }

// decodeInstancePixels parses one raw DICOM byte stream and returns the
// first frame's pixel values as float64 (pre-rescale), along with the
// decoded matrix dimensions.
func decodeInstancePixels(data []byte) (raw []float64, cols, rows int, err error) {
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, 0, 0, &DecodeError{Reason: err.Error()}
	}

	rows, err = intTagValue(&ds, tag.Rows)
	if err != nil {
		return nil, 0, 0, err
	}
	cols, err = intTagValue(&ds, tag.Columns)
	if err != nil {
		return nil, 0, 0, err
	}

	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, 0, 0, &DecodeError{Reason: "no PixelData element"}
	}
	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, 0, 0, &DecodeError{Reason: "PixelData element has unexpected value type"}
	}
	if len(info.Frames) == 0 {
		return nil, 0, 0, &DecodeError{Reason: "no frames in PixelData"}
	}

	fr := info.Frames[0]
	if fr.Encapsulated {
		return nil, 0, 0, &DecodeError{Reason: "encapsulated transfer syntaxes are not supported"}
	}

	raw, err = nativeFrameValues(fr.NativeData)
	if err != nil {
		return nil, 0, 0, err
	}
	if len(raw) < cols*rows {
		return nil, 0, 0, &DecodeError{
			Reason: fmt.Sprintf("frame holds %d samples, need %d", len(raw), cols*rows),
		}
	}
	return raw[:cols*rows], cols, rows, nil
}

// nativeFrameValues widens the typed native frame buffer to float64.
func nativeFrameValues(nd any) ([]float64, error) {
	switch nf := nd.(type) {
	case *frame.NativeFrame[uint8]:
		return widen(nf.RawData), nil
	case *frame.NativeFrame[int8]:
		return widen(nf.RawData), nil
	case *frame.NativeFrame[uint16]:
		return widen(nf.RawData), nil
	case *frame.NativeFrame[int16]:
		return widen(nf.RawData), nil
	case *frame.NativeFrame[uint32]:
		return widen(nf.RawData), nil
	case *frame.NativeFrame[int32]:
		return widen(nf.RawData), nil
	case *frame.NativeFrame[int]:
		return widen(nf.RawData), nil
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported native frame type %T", nd)}
	}
}

func widen[I int8 | uint8 | int16 | uint16 | int32 | uint32 | int](in []I) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func intTagValue(ds *dicom.Dataset, t tag.Tag) (int, error) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return 0, &DecodeError{Reason: fmt.Sprintf("missing tag %v", t)}
	}
	vals, ok := el.Value.GetValue().([]int)
	if !ok || len(vals) == 0 {
		return 0, &DecodeError{Reason: fmt.Sprintf("tag %v has unexpected value type", t)}
	}
	return vals[0], nil
}
