package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   mgl64.Vec3
		want mgl64.Vec3
	}{
		{"unit x", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}},
		{"scaled y", mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, 1, 0}},
		{"zero maps to axial normal", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !got.ApproxEqualThreshold(tt.want, 1e-12) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeLength(t *testing.T) {
	v := Normalize(mgl64.Vec3{3, -4, 12})
	if math.Abs(v.Len()-1) > 1e-12 {
		t.Errorf("normalized length = %v, want 1", v.Len())
	}
}

func TestCrossRightHanded(t *testing.T) {
	got := Cross(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})
	if !got.ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("x cross y = %v, want z", got)
	}
}

func TestAxisAngleRotation(t *testing.T) {
	// Quarter turn around z maps x onto y.
	q := AxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2)
	got := Rotate(q, mgl64.Vec3{1, 0, 0})
	if got.Sub(mgl64.Vec3{0, 1, 0}).Len() > 1e-9 {
		t.Errorf("rotated = %v, want (0,1,0)", got)
	}
}

func TestQuatMulComposes(t *testing.T) {
	// Two quarter turns around z equal one half turn.
	quarter := AxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/2)
	half := QuatMul(quarter, quarter)
	got := Rotate(half, mgl64.Vec3{1, 0, 0})
	if got.Sub(mgl64.Vec3{-1, 0, 0}).Len() > 1e-9 {
		t.Errorf("rotated = %v, want (-1,0,0)", got)
	}
}

func TestQuatToMat4MatchesRotate(t *testing.T) {
	q := AxisAngle(mgl64.Vec3{1, 2, 3}, 0.7)
	m := QuatToMat4(q)
	v := mgl64.Vec3{0.3, -1.1, 2.5}
	want := Rotate(q, v)
	got := m.Mul4x1(v.Vec4(0)).Vec3()
	if !got.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("matrix rotation = %v, quaternion rotation = %v", got, want)
	}
}

func TestInvertMat4(t *testing.T) {
	m := mgl64.Translate3D(3, -2, 7).Mul4(mgl64.HomogRotate3D(0.4, mgl64.Vec3{0, 1, 0}))
	inv, ok := InvertMat4(m)
	if !ok {
		t.Fatal("invertible matrix reported singular")
	}
	id := m.Mul4(inv)
	ident := mgl64.Ident4()
	for i := range id {
		if math.Abs(id[i]-ident[i]) > 1e-9 {
			t.Errorf("m * inv(m) = %v, want identity", id)
			break
		}
	}
}

func TestInvertMat4Singular(t *testing.T) {
	var m mgl64.Mat4 // all zeros, det == 0
	inv, ok := InvertMat4(m)
	if ok {
		t.Fatal("singular matrix reported invertible")
	}
	if inv != (mgl64.Mat4{}) {
		t.Errorf("singular inverse = %v, want zero matrix", inv)
	}
}

func TestRadians(t *testing.T) {
	if got := Radians(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("Radians(180) = %v, want pi", got)
	}
}
