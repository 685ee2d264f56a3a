package core

import "gonum.org/v1/gonum/mat"

// Matrix4 is a row-major 4x4 homogeneous transform matrix. Inversion
// and determinant are delegated to gonum/mat (the rest of the 4x4 math
// in this file is closed-form), grounded on
// original_source/include/bulbit/matrix.h.
type Matrix4 [4][4]float64

func IdentityMatrix4() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func (m Matrix4) toGonum() *mat.Dense {
	data := make([]float64, 16)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			data[i*4+j] = m[i][j]
		}
	}
	return mat.NewDense(4, 4, data)
}

func matrix4FromGonum(d *mat.Dense) Matrix4 {
	var m Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}

func (m Matrix4) Mul(o Matrix4) Matrix4 {
	var r mat.Dense
	r.Mul(m.toGonum(), o.toGonum())
	return matrix4FromGonum(&r)
}

// Inverse returns the matrix inverse; ok is false for a singular
// matrix (degenerate scale), in which case callers should fall back to
// the identity rather than propagate NaNs.
func (m Matrix4) Inverse() (Matrix4, bool) {
	var inv mat.Dense
	err := inv.Inverse(m.toGonum())
	if err != nil {
		return IdentityMatrix4(), false
	}
	return matrix4FromGonum(&inv), true
}

func (m Matrix4) Transpose() Matrix4 {
	var t Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

// MulPoint transforms a point (implicit w=1), applying perspective
// divide if the matrix is not affine.
func (m Matrix4) MulPoint(p Vec3) Vec3 {
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3]
	z := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3]
	w := m[3][0]*p.X + m[3][1]*p.Y + m[3][2]*p.Z + m[3][3]
	if w != 1 && w != 0 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// MulVector transforms a direction (implicit w=0; translation ignored).
func (m Matrix4) MulVector(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// MulNormal transforms a surface normal by the inverse-transpose,
// which the caller must supply (precomputed on Transform).
func (m Matrix4) MulNormal(n Vec3) Vec3 {
	return m.MulVector(n)
}

func TranslationMatrix4(t Vec3) Matrix4 {
	m := IdentityMatrix4()
	m[0][3], m[1][3], m[2][3] = t.X, t.Y, t.Z
	return m
}

func ScaleMatrix4(s Vec3) Matrix4 {
	m := IdentityMatrix4()
	m[0][0], m[1][1], m[2][2] = s.X, s.Y, s.Z
	return m
}

// Transform is a matrix plus its precomputed inverse and the inverse-
// transpose used for normal transformation.
type Transform struct {
	M, MInv, NormalM Matrix4
}

func IdentityTransform() Transform {
	id := IdentityMatrix4()
	return Transform{M: id, MInv: id, NormalM: id}
}

// NewTRS builds a Transform from translation, rotation and scale, the
// (p, q, s) triple named by RendererInfo.camera_info.transform.
func NewTRS(translation Vec3, rotation Quaternion, scale Vec3) Transform {
	m := TranslationMatrix4(translation).Mul(rotation.ToMatrix4()).Mul(ScaleMatrix4(scale))
	inv, ok := m.Inverse()
	if !ok {
		inv = IdentityMatrix4()
	}
	return Transform{M: m, MInv: inv, NormalM: inv.Transpose()}
}

func (t Transform) Inverse() Transform {
	return Transform{M: t.MInv, MInv: t.M, NormalM: t.M.Transpose()}
}

func (t Transform) Point(p Vec3) Vec3  { return t.M.MulPoint(p) }
func (t Transform) Vector(v Vec3) Vec3 { return t.M.MulVector(v) }
func (t Transform) Normal(n Vec3) Vec3 { return t.NormalM.MulVector(n) }

func (t Transform) Ray(r Ray) Ray {
	out := r
	out.Origin = t.Point(r.Origin)
	out.Direction = t.Vector(r.Direction)
	return out
}
