package vrt

import (
	"github.com/go-gl/mathgl/mgl32"
)

const (
	rotateSpeed = 0.01
	panSpeed    = 0.001
	zoomSpeed   = 0.001

	minDistance = 10

	nearPlane = 1
	farPlane  = 10000
)

// Camera is an arcball: a unit orientation quaternion, a distance from
// the focus point, a screen-aligned pan, and a vertical field of view
// in radians.
type Camera struct {
	Orientation mgl32.Quat
	Distance    float32
	Pan         mgl32.Vec2
	FOV         float32

	initialDistance float32
}

// NewCamera looks at the volume from the given distance.
func NewCamera(distance float32) *Camera {
	if distance < minDistance {
		distance = minDistance
	}
	return &Camera{
		Orientation:     mgl32.QuatIdent(),
		Distance:        distance,
		FOV:             mgl32.DegToRad(45),
		initialDistance: distance,
	}
}

// Rotate applies a screen-space drag: yaw around the screen Y axis,
// pitch around the screen X axis, composed as yaw·pitch·current.
func (c *Camera) Rotate(dx, dy float32) {
	yaw := mgl32.QuatRotate(dx*rotateSpeed, mgl32.Vec3{0, 1, 0})
	pitch := mgl32.QuatRotate(dy*rotateSpeed, mgl32.Vec3{1, 0, 0})
	c.Orientation = yaw.Mul(pitch).Mul(c.Orientation).Normalize()
}

// Zoom scales the distance by 1 + delta·0.001, clamped to
// [10, 10·initialDistance].
func (c *Camera) Zoom(delta float32) {
	c.Distance *= 1 + delta*zoomSpeed
	if c.Distance < minDistance {
		c.Distance = minDistance
	}
	if max := 10 * c.initialDistance; c.Distance > max {
		c.Distance = max
	}
}

// PanBy shifts the view target in screen space. The offset scales with
// distance so apparent pan speed stays constant while zooming.
func (c *Camera) PanBy(dx, dy float32) {
	c.Pan = c.Pan.Add(mgl32.Vec2{dx, dy}.Mul(c.Distance * panSpeed))
}

// Reset returns to the initial framing.
func (c *Camera) Reset() {
	c.Orientation = mgl32.QuatIdent()
	c.Distance = c.initialDistance
	c.Pan = mgl32.Vec2{}
}

// ViewMatrix builds the world→eye transform looking at center.
func (c *Camera) ViewMatrix(center mgl32.Vec3) mgl32.Mat4 {
	translate := mgl32.Translate3D(-c.Pan.X(), -c.Pan.Y(), -c.Distance)
	rotate := c.Orientation.Mat4()
	recenter := mgl32.Translate3D(-center.X(), -center.Y(), -center.Z())
	return translate.Mul4(rotate).Mul4(recenter)
}

// ProjMatrix builds the perspective projection for the given aspect
// ratio.
func (c *Camera) ProjMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FOV, aspect, nearPlane, farPlane)
}
