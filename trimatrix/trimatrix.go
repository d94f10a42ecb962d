// Package trimatrix implements the packed upper-triangular bit matrix
// used to remember the elimination history of each discovered
// independent coded fragment.
//
// Storage is the simple row-major m*m layout (entry (row, col) lives at
// flat bit row*m+col) rather than the more compact
// y*(2m-y+1)/2 triangular packing: it wastes the lower triangle but
// keeps addressing a single multiply-add, which matters more on a
// microcontroller than the roughly 2x space saving. Implementers tight
// on RAM can reintroduce the compact packing behind the same API.
package trimatrix

import (
	"fmt"

	"github.com/brocaar/lorawan-fragdec/bitvec"
)

// Matrix is a fixed-size m*m upper-triangular bit matrix. Only entries
// with col >= row are ever written; entries below the diagonal always
// read as zero. The zero value is not usable; construct with New.
type Matrix struct {
	bits bitvec.Vector
	m    int
}

// New allocates an m*m triangular matrix, all entries clear.
func New(m int) Matrix {
	if m < 0 {
		panic(fmt.Sprintf("trimatrix: negative dimension %d", m))
	}
	return Matrix{
		bits: bitvec.New(m * m),
		m:    m,
	}
}

// Dim returns the matrix dimension m.
func (mx Matrix) Dim() int {
	return mx.m
}

func (mx Matrix) checkUpper(i, row int) {
	if row < 0 || row >= mx.m || i < row || i >= mx.m {
		panic(fmt.Sprintf("trimatrix: index (i=%d, row=%d) out of upper-triangular range for m=%d", i, row, mx.m))
	}
}

// Get returns the entry at (i, row). Requires i >= row.
func (mx Matrix) Get(i, row int) bool {
	mx.checkUpper(i, row)
	return mx.bits.Test(row*mx.m + i)
}

// Set sets the entry at (i, row). Requires i >= row.
func (mx Matrix) Set(i, row int) {
	mx.checkUpper(i, row)
	mx.bits.Set(row*mx.m + i)
}

// Clear clears the entry at (i, row). Requires i >= row.
func (mx Matrix) Clear(i, row int) {
	mx.checkUpper(i, row)
	mx.bits.Clear(row*mx.m + i)
}

// WriteLine stores vec as the reduction history for row: for every
// i in [row, m), entry (i, row) is set to vec.Test(i).
func (mx Matrix) WriteLine(row int, vec bitvec.Vector) {
	if row < 0 || row >= mx.m {
		panic(fmt.Sprintf("trimatrix: row %d out of range [0, %d)", row, mx.m))
	}
	for i := row; i < mx.m; i++ {
		if vec.Test(i) {
			mx.Set(i, row)
		} else {
			mx.Clear(i, row)
		}
	}
}

// ReadLine populates vec with row's stored reduction: for every
// i in [0, m), vec.Test(i) becomes (i >= row) && entry(i, row), i.e.
// entries below the diagonal read back as zero.
func (mx Matrix) ReadLine(row int, vec bitvec.Vector) {
	if row < 0 || row >= mx.m {
		panic(fmt.Sprintf("trimatrix: row %d out of range [0, %d)", row, mx.m))
	}
	vec.ClearRegion(mx.m)
	for i := row; i < mx.m; i++ {
		if mx.Get(i, row) {
			vec.Set(i)
		}
	}
}

// HasPivot reports whether row's diagonal entry is set, i.e. whether a
// reduction has been stored for this row.
func (mx Matrix) HasPivot(row int) bool {
	if mx.m == 0 {
		return false
	}
	return mx.Get(row, row)
}
