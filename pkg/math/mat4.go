package math

// Mat4 is a 4x4 matrix in column-major order, acting on column vectors.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// FromAffineRows builds a matrix from a 3x4 affine transform written in
// row-vector form: rows 0..2 hold the linear part, row 3 the translation.
// A point p maps to p*L + t, so the column-major result is L transposed.
func FromAffineRows(r [12]float64) Mat4 {
	return Mat4{
		float32(r[0]), float32(r[1]), float32(r[2]), 0,
		float32(r[3]), float32(r[4]), float32(r[5]), 0,
		float32(r[6]), float32(r[7]), float32(r[8]), 0,
		float32(r[9]), float32(r[10]), float32(r[11]), 1,
	}
}

// Mul multiplies this matrix by another (m * other), so other applies
// first.
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformVec3 transforms a point by this matrix (assumes w=1).
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	x := m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]
	y := m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]
	z := m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// TransformBox returns the bounds of the eight transformed corners of b.
func (m Mat4) TransformBox(b Box3) Box3 {
	var out Box3
	if b.Empty() {
		return out
	}
	for i := 0; i < 8; i++ {
		corner := b.Min
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		out.Extend(m.TransformVec3(corner))
	}
	return out
}
