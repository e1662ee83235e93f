package mathutil

// Mat4 is a 4×4 matrix stored row-major. Used for affine object transforms.
type Mat4 [16]float64

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 linear part and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// Compose builds T × R × S.
func Compose(t Vec3, r Mat3, s Vec3) Mat4 {
	rs := Mat3Mul(r, Mat3Diag(s[0], s[1], s[2]))
	return FromMat3Translation(rs, t)
}

// Linear returns the upper-left 3×3 block.
func (m Mat4) Linear() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// AffineInverse inverts an affine matrix (bottom row 0 0 0 1).
// A singular linear part yields the identity, matching Mat3.Inverse.
func (m Mat4) AffineInverse() Mat4 {
	inv := m.Linear().Inverse()
	t := inv.MulVec3(m.Translation()).Scale(-1)
	return FromMat3Translation(inv, t)
}
