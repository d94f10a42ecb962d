/*

Package fragdec implements the receiver side of the LoRaWAN Fragmented
Data Block Transport application layer: online XOR/Gaussian-elimination
reconstruction of an image from a lossy stream of uncoded and
forward-error-corrected fragments.

See the fragstore sub-package for the pluggable fragment storage
backends, parityrow for the parity-matrix row generator, and
applayer/fragmentation for the wire commands that negotiate a session.

*/
package fragdec
