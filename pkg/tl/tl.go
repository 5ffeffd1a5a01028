// Package tl implements the Firmware Handoff Transfer List (TL) format.
//
// A TL is a flat little-endian buffer made of a fixed 24-byte header followed
// by Transfer Entries (TE). Each entry is an 8-byte header holding a 24-bit
// tag and the payload size, followed by the payload. Payloads start on a
// 2^alignment byte boundary relative to the start of the list, with empty
// filler entries covering any gap. The unsigned byte sum of the list is
// zero whenever the checksum flag is set.
package tl

// TL global constants must never change.
const (
	// Signature identifies a TL buffer.
	Signature uint32 = 0x4A0FB10B

	// Version is the TL format version produced by this package.
	Version uint8 = 1

	// HeaderSize is the size of the encoded TL header.
	HeaderSize = 0x18

	// EntryHeaderSize is the size of the encoded TE header.
	EntryHeaderSize = 8

	// DefaultAlignment is log2 of the default entry granule (8 bytes).
	DefaultAlignment uint8 = 3

	// MaxAlignment bounds the alignment field so 2^alignment fits in 32 bits.
	MaxAlignment uint8 = 31

	// MaxTagID is the largest tag that fits the 3-byte id field.
	MaxTagID = 0xFFFFFF

	// FlagChecksum enables the byte-sum-to-zero invariant.
	FlagChecksum uint32 = 1 << 0
)
