// Package fragstore implements the fragment block store capability
// interface: the byte-addressable external storage the decoder
// persists reconstructed fragment bodies to between reduction steps.
//
// The decoder borrows a Store for the lifetime of its session and never
// addresses anything outside [0, slots*fragSize).
package fragstore

import "fmt"

// Store is the byte-addressable read/write contract the decoder uses to
// persist one fragment body per uncoded slot. Implementations must make
// a Write durable enough to be observed by a subsequent Read within the
// same session; cross-session durability is a caller policy.
type Store interface {
	// Write persists buf starting at offset.
	Write(offset uint32, buf []byte) error
	// Read populates buf with previously written bytes starting at offset.
	Read(offset uint32, buf []byte) error
}

// SlotOffset returns the byte offset of uncoded slot idx given a
// fragment size, matching the decoder's addressing scheme
// (slot_index * frag_size).
func SlotOffset(idx int, fragSize int) uint32 {
	if idx < 0 || fragSize <= 0 {
		panic(fmt.Sprintf("fragstore: invalid slot addressing idx=%d fragSize=%d", idx, fragSize))
	}
	return uint32(idx * fragSize)
}
