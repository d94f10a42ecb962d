// Package parityrow implements the parity-matrix row generator: the
// pure, deterministic map from a coded fragment's serial number to the
// set of uncoded-fragment indices it XORs together.
//
// This is a direct port of the PRBS23 LFSR in
// github.com/brocaar/lorawan/applayer/fragmentation's transmitter-side
// Encode, which must stay bit-for-bit identical to the receiver below
// for the two sides to interoperate.
package parityrow

import (
	"fmt"

	"github.com/brocaar/lorawan-fragdec/bitvec"
)

// prbs23 advances a 23-bit Fibonacci-form LFSR by one step.
func prbs23(x uint32) uint32 {
	b0 := x & 1
	b1 := (x >> 5) & 1
	return (x >> 1) | ((b0 ^ b1) << 22)
}

func isPowerOfTwo(n int) bool {
	return n != 0 && n&(n-1) == 0
}

// Row computes the support set of coded fragment serial n (n=1 for the
// first coded fragment, whose frame counter is M+1) over m uncoded
// fragments, writing the result into out. out must have capacity >= m
// and is cleared over [0, m) before being populated.
//
// Row is pure: equal (m, n) always produce an identical support.
func Row(m, n int, out bitvec.Vector) {
	if n < 1 {
		panic(fmt.Sprintf("parityrow: serial n must be >= 1, got %d", n))
	}
	if m < 0 || out.Cap() < m {
		panic(fmt.Sprintf("parityrow: output vector capacity %d too small for m=%d", out.Cap(), m))
	}

	out.ClearRegion(m)
	if m == 0 {
		return
	}

	modulus := m
	if isPowerOfTwo(m) {
		modulus = m + 1
	}

	x := uint32(1 + 1001*n)
	for i := 0; i < m/2; i++ {
		r := m // any value >= m forces at least one prbs23 step
		for r >= m {
			x = prbs23(x)
			r = int(x) % modulus
		}
		out.Set(r)
	}
}
