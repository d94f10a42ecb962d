package parityrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brocaar/lorawan-fragdec/bitvec"
)

func TestDeterminism(t *testing.T) {
	for _, m := range []int{4, 7, 8, 16, 31} {
		for n := 1; n <= 5; n++ {
			a := bitvec.New(m)
			b := bitvec.New(m)
			Row(m, n, a)
			Row(m, n, b)
			for i := 0; i < m; i++ {
				require.Equal(t, a.Test(i), b.Test(i), "m=%d n=%d i=%d", m, n, i)
			}
		}
	}
}

func TestSupportWithinBounds(t *testing.T) {
	m := 12
	out := bitvec.New(m)
	for n := 1; n <= 50; n++ {
		Row(m, n, out)
		for i := 0; i < m; i++ {
			_ = out.Test(i) // in range by construction; exercising Test doesn't panic
		}
	}
}

func TestRowClearsPreviousContent(t *testing.T) {
	out := bitvec.New(8)
	for i := 0; i < 8; i++ {
		out.Set(i)
	}
	Row(8, 1, out)
	// at least one of the m bits must now be clear: a full row would
	// require m/2 == m distinct coefficients, which never happens for
	// m > 0.
	cleared := false
	for i := 0; i < 8; i++ {
		if !out.Test(i) {
			cleared = true
			break
		}
	}
	assert.True(t, cleared)
}

func TestPowerOfTwoUsesWiderModulus(t *testing.T) {
	// m=8 is a power of two: the spec's mm=M+1 branch must be taken, so
	// the rejection sampling modulus is 9, not 8.
	assert.True(t, isPowerOfTwo(8))
	assert.False(t, isPowerOfTwo(7))
	assert.False(t, isPowerOfTwo(12))

	m := 8
	modulus := m
	if isPowerOfTwo(m) {
		modulus = m + 1
	}
	assert.Equal(t, 9, modulus)
}

func TestPRBS23Step(t *testing.T) {
	// the LFSR never produces zero from a non-zero seed instantly
	// collapsing to zero; spot-check the bit arithmetic directly.
	x := uint32(1 + 1001*1)
	next := prbs23(x)
	b0 := x & 1
	b1 := (x >> 5) & 1
	expected := (x >> 1) | ((b0 ^ b1) << 22)
	assert.Equal(t, expected, next)
}

func TestRowPanicsOnUndersizedOutput(t *testing.T) {
	out := bitvec.New(4)
	assert.Panics(t, func() { Row(8, 1, out) })
}

func TestRowZeroM(t *testing.T) {
	out := bitvec.New(0)
	assert.NotPanics(t, func() { Row(0, 1, out) })
}
