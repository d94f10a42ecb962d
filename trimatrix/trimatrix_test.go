package trimatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brocaar/lorawan-fragdec/bitvec"
)

func TestWriteReadLine(t *testing.T) {
	require := require.New(t)
	m := New(5)

	line := bitvec.New(5)
	line.Set(1)
	line.Set(3)
	line.Set(4)
	m.WriteLine(1, line)

	out := bitvec.New(5)
	m.ReadLine(1, out)

	// below the diagonal (column 0) must read back as zero even though
	// it was never written.
	require.False(out.Test(0))
	require.True(out.Test(1))
	require.False(out.Test(2))
	require.True(out.Test(3))
	require.True(out.Test(4))
}

func TestTriangularityNeverTouchesBelowDiagonal(t *testing.T) {
	m := New(4)
	assert.Panics(t, func() { m.Get(0, 1) })
	assert.Panics(t, func() { m.Set(1, 2) })
	assert.Panics(t, func() { m.Clear(0, 3) })
}

func TestHasPivot(t *testing.T) {
	m := New(3)
	require.False(t, m.HasPivot(1))
	m.Set(1, 1)
	require.True(t, m.HasPivot(1))
	require.False(t, m.HasPivot(0))
}

func TestPivotMonotonicity(t *testing.T) {
	m := New(3)
	line := bitvec.New(3)
	line.Set(0)
	m.WriteLine(0, line)
	require.True(t, m.HasPivot(0))

	// writing a different, unrelated row never clears an existing pivot
	other := bitvec.New(3)
	other.Set(1)
	m.WriteLine(1, other)
	require.True(t, m.HasPivot(0))
	require.True(t, m.HasPivot(1))
}
