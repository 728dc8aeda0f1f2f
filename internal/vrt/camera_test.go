package vrt

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestZoomClampsAtBothBounds(t *testing.T) {
	c := NewCamera(100)

	// Zoom in far past the lower bound.
	for i := 0; i < 100; i++ {
		c.Zoom(-999)
	}
	if c.Distance != minDistance {
		t.Errorf("distance after max zoom-in = %v, want %v", c.Distance, float32(minDistance))
	}

	// Zoom out far past the upper bound.
	for i := 0; i < 100; i++ {
		c.Zoom(999)
	}
	if c.Distance != 1000 {
		t.Errorf("distance after max zoom-out = %v, want 1000", c.Distance)
	}
}

func TestZoomScalesByDelta(t *testing.T) {
	c := NewCamera(100)
	c.Zoom(100) // 1 + 100*0.001 = 1.1
	if math.Abs(float64(c.Distance)-110) > 1e-3 {
		t.Errorf("distance = %v, want 110", c.Distance)
	}
}

func TestPanScalesWithDistance(t *testing.T) {
	near := NewCamera(100)
	far := NewCamera(100)
	far.Distance = 1000

	near.PanBy(10, 0)
	far.PanBy(10, 0)

	if far.Pan.X() != 10*near.Pan.X() {
		t.Errorf("pan at 10x distance = %v, want 10x %v", far.Pan.X(), near.Pan.X())
	}
}

func TestRotateStaysUnit(t *testing.T) {
	c := NewCamera(100)
	for i := 0; i < 500; i++ {
		c.Rotate(3, -2)
	}
	if math.Abs(float64(c.Orientation.Len())-1) > 1e-4 {
		t.Errorf("orientation length = %v after many drags", c.Orientation.Len())
	}
}

func TestViewMatrixLooksAtCenter(t *testing.T) {
	c := NewCamera(200)
	center := mgl32.Vec3{50, 60, 70}
	v := c.ViewMatrix(center)
	eye := v.Mul4x1(center.Vec4(1))
	// The focus point lands on the -z axis at the camera distance.
	if math.Abs(float64(eye.X())) > 1e-4 || math.Abs(float64(eye.Y())) > 1e-4 ||
		math.Abs(float64(eye.Z()+200)) > 1e-3 {
		t.Errorf("center maps to %v, want (0,0,-200)", eye)
	}
}

func TestReset(t *testing.T) {
	c := NewCamera(150)
	c.Rotate(5, 5)
	c.Zoom(500)
	c.PanBy(3, 4)
	c.Reset()
	if c.Distance != 150 || c.Pan != (mgl32.Vec2{}) {
		t.Errorf("reset camera = %+v", c)
	}
	got := c.Orientation.Rotate(mgl32.Vec3{0, 0, 1})
	if !got.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("reset orientation rotates z to %v", got)
	}
}

func TestMinimumInitialDistance(t *testing.T) {
	c := NewCamera(1)
	if c.Distance != minDistance {
		t.Errorf("distance = %v, want floor %v", c.Distance, float32(minDistance))
	}
}

func TestDefaultTransferFunction(t *testing.T) {
	tf := DefaultTransferFunction()
	if len(tf) != TransferFunctionSize*4 {
		t.Fatalf("length = %d", len(tf))
	}
	// Air is fully transparent; the top of the range is opaque-ish.
	if tf[3] != 0 {
		t.Errorf("air alpha = %d, want 0", tf[3])
	}
	last := tf[(TransferFunctionSize-1)*4+3]
	if last == 0 {
		t.Error("bone end of the ramp is fully transparent")
	}
}
