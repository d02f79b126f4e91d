package math

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	if result != m {
		t.Errorf("M * I should equal M, got %v", result)
	}
}

func TestTranslateMulVec4(t *testing.T) {
	got := Translate(5, 10, 15).MulVec4(Vec4{1, 1, 1, 1})
	want := Vec4{6, 11, 16, 1}
	if got != want {
		t.Errorf("Translate * v = %v, want %v", got, want)
	}

	// Directions (w = 0) ignore translation
	dir := Translate(5, 10, 15).MulVec4(Vec4{1, 0, 0, 0})
	if dir != (Vec4{1, 0, 0, 0}) {
		t.Errorf("translated direction = %v, want unchanged", dir)
	}
}

func TestRotateY(t *testing.T) {
	got := RotateY(math.Pi / 2).MulVec4(Vec4{1, 0, 0, 1})
	if !approx(got.X, 0) || !approx(got.Z, -1) {
		t.Errorf("RotateY(90°) * +X = %v, want (0, 0, -1)", got)
	}
}

func TestRotateX(t *testing.T) {
	got := RotateX(math.Pi / 2).MulVec4(Vec4{0, 1, 0, 1})
	if !approx(got.Y, 0) || !approx(got.Z, 1) {
		t.Errorf("RotateX(90°) * +Y = %v, want (0, 0, 1)", got)
	}
}

func TestScale(t *testing.T) {
	got := Scale(2).MulVec4(Vec4{1, 2, 3, 1})
	if got != (Vec4{2, 4, 6, 1}) {
		t.Errorf("Scale(2) * v = %v", got)
	}
}

func TestLookAt(t *testing.T) {
	view := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})

	// The target ends up straight ahead on -Z at the eye distance.
	got := view.MulVec4(Vec4{0, 0, 0, 1})
	if !approx(got.X, 0) || !approx(got.Y, 0) || !approx(got.Z, -5) {
		t.Errorf("LookAt target = %v, want (0, 0, -5)", got)
	}
}

func TestPerspective(t *testing.T) {
	p := Perspective(math.Pi/2, 1, 1, 100)

	// A point on the near plane maps to NDC depth -1.
	clip := p.MulVec4(Vec4{0, 0, -1, 1})
	if !approx(clip.Z/clip.W, -1) {
		t.Errorf("near plane depth = %v, want -1", clip.Z/clip.W)
	}
	if p[11] != -1 {
		t.Errorf("expected m[11] = -1, got %v", p[11])
	}
}

func TestAroundPoint(t *testing.T) {
	p := Vec3{2, 3, 4}
	// Z-up to Y-up about p
	m := AroundPoint(RotateX(-math.Pi/2), p)

	fixed := m.MulVec4(Vec4{2, 3, 4, 1})
	if !approx(fixed.X, 2) || !approx(fixed.Y, 3) || !approx(fixed.Z, 4) {
		t.Errorf("pivot moved to %v", fixed)
	}

	// One unit along +Z from the pivot ends up one unit along +Y.
	up := m.MulVec4(Vec4{2, 3, 5, 1})
	if !approx(up.X, 2) || !approx(up.Y, 4) || !approx(up.Z, 4) {
		t.Errorf("AroundPoint(RotateX(-90°)) * (p+Z) = %v, want (2, 4, 4)", up)
	}
}
