package vrt

import (
	"errors"
	"fmt"
)

// All renderer errors are fatal to the instance; callers drop back to
// 2D MPR.
var (
	// ErrGPUUnavailable means no usable device was supplied.
	ErrGPUUnavailable = errors.New("gpu unavailable")
	// ErrContextLost marks a device loss observed mid-frame.
	ErrContextLost = errors.New("gpu context lost")
	// ErrDisposed marks use after Dispose.
	ErrDisposed = errors.New("renderer disposed")
)

// DimensionError reports a volume axis larger than the device's 3D
// texture limit.
type DimensionError struct {
	Axis string
	Size int
	Max  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("volume %s dimension %d exceeds gpu 3d texture limit %d", e.Axis, e.Size, e.Max)
}

// ShaderError wraps shader module compilation or pipeline link
// failures.
type ShaderError struct {
	Stage string // "compile" or "link"
	Err   error
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("shader %s failed: %v", e.Stage, e.Err)
}

func (e *ShaderError) Unwrap() error { return e.Err }
