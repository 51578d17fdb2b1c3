package math

import (
	"testing"
)

func TestBox3Extend(t *testing.T) {
	var b Box3
	if !b.Empty() {
		t.Fatal("zero box should be empty")
	}
	b.Extend(Vec3{1, -2, 3})
	b.Extend(Vec3{-1, 4, 0})

	if b.Min != (Vec3{-1, -2, 0}) {
		t.Errorf("Min = %v", b.Min)
	}
	if b.Max != (Vec3{1, 4, 3}) {
		t.Errorf("Max = %v", b.Max)
	}
	if b.Size() != (Vec3{2, 6, 3}) {
		t.Errorf("Size = %v", b.Size())
	}
	if b.Center() != (Vec3{0, 1, 1.5}) {
		t.Errorf("Center = %v", b.Center())
	}
}

func TestBox3Union(t *testing.T) {
	var a, b Box3
	a.Extend(Vec3{0, 0, 0})
	b.Extend(Vec3{2, 2, 2})

	a.Union(Box3{})
	if a.Max != (Vec3{}) {
		t.Errorf("union with empty box changed bounds: %v", a.Max)
	}
	a.Union(b)
	if a.Max != (Vec3{2, 2, 2}) {
		t.Errorf("Max = %v", a.Max)
	}
}
