package gplot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrixIdentity(t *testing.T) {
	assert.True(t, Identity().IsIdentity())
	assert.True(t, Scale(1, 1).IsIdentity())
	assert.True(t, Translate(0, 0).IsIdentity())
	assert.False(t, Scale(2, 1).IsIdentity())
	assert.False(t, Mat4{}.IsIdentity())
}

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name         string
		m            Mat4
		x, y         float32
		wantX, wantY float32
	}{
		{"identity", Identity(), 3, -4, 3, -4},
		{"translate", Translate(1, 2), 3, 4, 4, 6},
		{"scale", Scale(2, 0.5), 3, 4, 6, 2},
		{"scale then translate", Translate(1, 1).Multiply(Scale(2, 3)), 1, 1, 3, 4},
		{"translate then scale", Scale(2, 3).Multiply(Translate(1, 1)), 1, 1, 4, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.m.TransformPoint(tt.x, tt.y)
			assert.InDelta(t, tt.wantX, x, 1e-6)
			assert.InDelta(t, tt.wantY, y, 1e-6)
		})
	}
}

func TestMatrixMultiplyIdentity(t *testing.T) {
	m := Translate(5, -2).Multiply(Scale(3, 4))
	assert.Equal(t, m, m.Multiply(Identity()))
	assert.Equal(t, m, Identity().Multiply(m))
}
