package math

import (
	"testing"
)

func TestVec3Length(t *testing.T) {
	v := Vec3{3, 4, 0}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec3.Length() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 12}
	n, ok := v.Normalize()
	if !ok {
		t.Fatal("Vec3.Normalize() reported zero length")
	}
	l := n.Length()
	if l < 0.99999 || l > 1.00001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec3NormalizeExtremeMagnitudes(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
	}{
		{"huge", Vec3{1e20, 0, 0}},
		{"near max float32", Vec3{3e38, 3e38, 0}},
		{"tiny", Vec3{1e-25, 0, 0}},
		{"denormal", Vec3{0, 1e-40, 1e-40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tt.v.Normalize()
			if !ok {
				t.Fatalf("Normalize(%v) reported zero length", tt.v)
			}
			if l := n.Length(); l < 0.99999 || l > 1.00001 {
				t.Errorf("Normalize(%v).Length() = %v, want ~1", tt.v, l)
			}
		})
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if _, ok := (Vec3{}).Normalize(); ok {
		t.Error("Vec3.Normalize() of zero vector should fail")
	}
}

func TestVec3AppendPadded(t *testing.T) {
	tests := []struct {
		width int
		want  []float32
	}{
		{3, []float32{1, 2, 3}},
		{4, []float32{1, 2, 3, 0}},
		{6, []float32{1, 2, 3, 0, 0, 0}},
	}

	for _, tt := range tests {
		got := Vec3{1, 2, 3}.AppendPadded(nil, tt.width)
		if len(got) != len(tt.want) {
			t.Fatalf("width %d: got %v, want %v", tt.width, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("width %d: got %v, want %v", tt.width, got, tt.want)
				break
			}
		}
	}
}

func TestVec4Append(t *testing.T) {
	got := Vec4{1, 2, 3, 1}.Append([]float32{9})
	want := []float32{9, 1, 2, 3, 1}
	if len(got) != len(want) {
		t.Fatalf("Vec4.Append() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("Vec4.Append() = %v, want %v", got, want)
			break
		}
	}
	if (Vec4{1, 2, 3, 4}).XYZ() != (Vec3{1, 2, 3}) {
		t.Error("Vec4.XYZ() dropped the wrong component")
	}
}
