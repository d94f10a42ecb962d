// Package fragtest generates protocol-correct transmitter-side
// fragments for use in tests. It is adapted from
// github.com/brocaar/lorawan/applayer/fragmentation's Encode — the only
// piece of the transmitter kept in this module, and only as an internal
// test fixture generator: encoding itself is a spec.md Non-goal, so
// nothing here is exported outside the module.
package fragtest

import (
	"fmt"

	"github.com/brocaar/lorawan-fragdec/bitvec"
	"github.com/brocaar/lorawan-fragdec/parityrow"
)

// Split splits image into M equal-size uncoded fragment bodies.
// len(image) must be a multiple of fragSize.
func Split(image []byte, fragSize int) [][]byte {
	if len(image)%fragSize != 0 {
		panic(fmt.Sprintf("fragtest: image length %d is not a multiple of fragSize %d", len(image), fragSize))
	}
	m := len(image) / fragSize
	rows := make([][]byte, m)
	for i := 0; i < m; i++ {
		rows[i] = image[i*fragSize : (i+1)*fragSize]
	}
	return rows
}

// Encode reproduces the real transmitter's FEC coded fragments: row y
// (0-indexed, y=0 is frame counter M+1) is the XOR of the uncoded rows
// named by parityrow.Row(m, y+1, ...).
func Encode(uncoded [][]byte, fragSize, redundancy int) [][]byte {
	m := len(uncoded)
	coded := make([][]byte, redundancy)
	support := bitvec.New(m)

	for y := 0; y < redundancy; y++ {
		row := make([]byte, fragSize)
		parityrow.Row(m, y+1, support)
		for x := 0; x < m; x++ {
			if support.Test(x) {
				for b := 0; b < fragSize; b++ {
					row[b] ^= uncoded[x][b]
				}
			}
		}
		coded[y] = row
	}

	return coded
}
