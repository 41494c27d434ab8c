// Package register defines the fixed binary register blocks exchanged between the
// Kosmo master and its slave modules.
//
// Every slave kind owns exactly one block layout. The layout is the contract
// between master and slave firmware: field order, width and byte order must
// match on both ends, and a layout change requires bumping the size on both
// ends at the same time. All multi-byte fields are little-endian, the native
// order of the AVR slaves, and there is no padding.
//
// Blocks are converted with MarshalBinary/UnmarshalBinary; UnmarshalBinary
// rejects any input whose length differs from the block size, so a partially
// received block can never be decoded.
package register
