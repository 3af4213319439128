package gplot

import "github.com/chewxy/math32"

// Mat4 is a 4x4 matrix in column-major order, the layout WGSL expects for
// mat4x4<f32>. 2D chart transforms only use the affine part in x and y:
//
//	| m[0]  m[4]  0  m[12] |
//	| m[1]  m[5]  0  m[13] |
//	|  0     0    1    0   |
//	|  0     0    0    1   |
//
// Surfaces use the full 3D affine part; the last row stays 0, 0, 0, 1.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float32) Mat4 {
	m := Identity()
	m[12] = x
	m[13] = y
	return m
}

// Scale creates a scaling matrix.
func Scale(x, y float32) Mat4 {
	m := Identity()
	m[0] = x
	m[5] = y
	return m
}

// Translate3 creates a 3D translation matrix.
func Translate3(x, y, z float32) Mat4 {
	m := Translate(x, y)
	m[14] = z
	return m
}

// Scale3 creates a 3D scaling matrix.
func Scale3(x, y, z float32) Mat4 {
	m := Scale(x, y)
	m[10] = z
	return m
}

// RotateX creates a rotation of angle radians about the x axis, turning y
// towards z.
func RotateX(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation of angle radians about the z axis, turning x
// towards y.
func RotateZ(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Multiply returns m * other, applying other first.
func (m Mat4) Multiply(other Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * other[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// TransformPoint applies the matrix to a 2D point.
func (m Mat4) TransformPoint(x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}

// TransformPoint3 applies the affine part of the matrix to a 3D point.
func (m Mat4) TransformPoint3(x, y, z float32) (float32, float32, float32) {
	return m[0]*x + m[4]*y + m[8]*z + m[12],
		m[1]*x + m[5]*y + m[9]*z + m[13],
		m[2]*x + m[6]*y + m[10]*z + m[14]
}

// IsIdentity reports whether m is the identity matrix.
func (m Mat4) IsIdentity() bool {
	return m == Identity()
}
