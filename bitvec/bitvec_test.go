package bitvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetClearTest(t *testing.T) {
	assert := require.New(t)

	v := New(130) // spans three words
	assert.False(v.Test(0))
	v.Set(0)
	v.Set(63)
	v.Set(64)
	v.Set(129)
	assert.True(v.Test(0))
	assert.True(v.Test(63))
	assert.True(v.Test(64))
	assert.True(v.Test(129))
	assert.False(v.Test(65))

	v.Clear(64)
	assert.False(v.Test(64))
	// idempotent
	v.Clear(64)
	assert.False(v.Test(64))
	v.Set(0)
	assert.True(v.Test(0))
}

func TestClearRegion(t *testing.T) {
	v := New(20)
	for i := 0; i < 20; i++ {
		v.Set(i)
	}
	v.ClearRegion(12)
	for i := 0; i < 12; i++ {
		assert.False(t, v.Test(i), "bit %d should be cleared", i)
	}
	for i := 12; i < 20; i++ {
		assert.True(t, v.Test(i), "bit %d should remain set", i)
	}
}

func TestPopcountPrefix(t *testing.T) {
	v := New(70)
	for _, i := range []int{0, 1, 5, 63, 64, 69} {
		v.Set(i)
	}

	tests := []struct {
		i        int
		expected int
	}{
		{0, 1},
		{1, 2},
		{4, 2},
		{5, 3},
		{63, 4},
		{64, 5},
		{68, 5},
		{69, 6},
	}
	for _, tst := range tests {
		assert.Equal(t, tst.expected, v.PopcountPrefix(tst.i), "i=%d", tst.i)
	}
}

func TestIsRegionCleared(t *testing.T) {
	v := New(100)
	assert.True(t, v.IsRegionCleared(100))
	v.Set(99)
	assert.True(t, v.IsRegionCleared(99))
	assert.False(t, v.IsRegionCleared(100))
	v.Clear(99)
	v.Set(40)
	assert.False(t, v.IsRegionCleared(64))
	assert.True(t, v.IsRegionCleared(40))
}

func TestFindNthSetAndFirstSet(t *testing.T) {
	v := New(80)
	for _, i := range []int{3, 10, 64, 65, 79} {
		v.Set(i)
	}

	idx, ok := v.FindFirstSet(80)
	require.True(t, ok)
	require.Equal(t, 3, idx)

	idx, ok = v.FindNthSet(3, 80)
	require.True(t, ok)
	require.Equal(t, 64, idx)

	_, ok = v.FindNthSet(6, 80)
	require.False(t, ok)

	// restricting length excludes later bits
	idx, ok = v.FindNthSet(2, 11)
	require.True(t, ok)
	require.Equal(t, 10, idx)

	_, ok = v.FindNthSet(1, 3)
	require.False(t, ok)
}

func TestXorInPlace(t *testing.T) {
	a := New(70)
	b := New(70)
	a.Set(1)
	a.Set(64)
	b.Set(1)
	b.Set(69)

	XorInPlace(a, b, 70)
	assert.False(t, a.Test(1), "common bit should cancel out")
	assert.True(t, a.Test(64))
	assert.True(t, a.Test(69))
}

func TestOutOfRangePanics(t *testing.T) {
	v := New(8)
	assert.Panics(t, func() { v.Test(8) })
	assert.Panics(t, func() { v.Set(-1) })
	assert.Panics(t, func() { v.ClearRegion(9) })
	assert.Panics(t, func() { v.PopcountPrefix(8) })
	assert.Panics(t, func() { v.FindNthSet(0, 8) })
}
