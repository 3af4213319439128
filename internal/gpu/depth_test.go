// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepthTargetEnsure(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()
	counting := newCountingDevice(device)

	d := NewDepthTarget(counting, "w1")
	w, h := d.Size()
	assert.Zero(t, w+h)

	view, err := d.Ensure(64, 32)
	require.NoError(t, err)
	require.NotNil(t, view)
	again, err := d.Ensure(64, 32)
	require.NoError(t, err)
	assert.Equal(t, view, again, "same size reuses the texture")
	assert.Equal(t, 1, counting.texturesCreated)

	_, err = d.Ensure(80, 32)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.texturesCreated)
	assert.Equal(t, 1, counting.texturesDestroy)
	w, h = d.Size()
	assert.Equal(t, 80, w)
	assert.Equal(t, 32, h)

	_, err = d.Ensure(0, 10)
	assert.Error(t, err)

	d.Destroy()
	d.Destroy()
	assert.Equal(t, 2, counting.texturesDestroy)
}

func TestDepthAttachment(t *testing.T) {
	a := DepthAttachment(nil)
	assert.Equal(t, gputypes.LoadOpClear, a.DepthLoadOp)
	assert.Equal(t, float32(1), a.DepthClearValue)
	assert.False(t, a.DepthReadOnly)
}
