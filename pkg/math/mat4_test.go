package math

import (
	"testing"
)

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

var (
	translate10 = FromAffineRows([12]float64{1, 0, 0, 0, 1, 0, 0, 0, 1, 10, 0, 0})
	scale2      = FromAffineRows([12]float64{2, 0, 0, 0, 2, 0, 0, 0, 2, 0, 0, 0})
)

func TestMulIdentity(t *testing.T) {
	m := translate10
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestMulAppliesRightOperandFirst(t *testing.T) {
	got := translate10.Mul(scale2).TransformVec3(Vec3{1, 1, 1})
	if want := (Vec3{12, 2, 2}); got != want {
		t.Errorf("translate * scale: got %v, want %v", got, want)
	}

	got = scale2.Mul(translate10).TransformVec3(Vec3{1, 1, 1})
	if want := (Vec3{22, 2, 2}); got != want {
		t.Errorf("scale * translate: got %v, want %v", got, want)
	}
}

func TestFromAffineRows(t *testing.T) {
	tests := []struct {
		name string
		rows [12]float64
		in   Vec3
		want Vec3
	}{
		{
			name: "identity",
			rows: [12]float64{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0},
			in:   Vec3{1, 2, 3},
			want: Vec3{1, 2, 3},
		},
		{
			name: "translation",
			rows: [12]float64{1, 0, 0, 0, 1, 0, 0, 0, 1, 5, 6, 7},
			in:   Vec3{1, 2, 3},
			want: Vec3{6, 8, 10},
		},
		{
			name: "rotate 90 about z",
			// Row-vector form: x axis maps to y, y axis maps to -x.
			rows: [12]float64{0, 1, 0, -1, 0, 0, 0, 0, 1, 0, 0, 0},
			in:   Vec3{1, 0, 0},
			want: Vec3{0, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromAffineRows(tt.rows).TransformVec3(tt.in)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransformBox(t *testing.T) {
	var b Box3
	b.Extend(Vec3{0, 0, 0})
	b.Extend(Vec3{1, 1, 1})

	m := FromAffineRows([12]float64{2, 0, 0, 0, 1, 0, 0, 0, 1, 5, 0, 0})
	out := m.TransformBox(b)
	if out.Min != (Vec3{5, 0, 0}) || out.Max != (Vec3{7, 1, 1}) {
		t.Errorf("TransformBox: got %v..%v", out.Min, out.Max)
	}

	if !Identity().TransformBox(Box3{}).Empty() {
		t.Error("transforming an empty box should stay empty")
	}
}
