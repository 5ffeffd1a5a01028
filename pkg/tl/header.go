package tl

import "encoding/binary"

// Header is the decoded 24-byte TL header.
type Header struct {
	Signature  uint32
	Checksum   uint8
	Version    uint8
	HeaderSize uint8
	Alignment  uint8
	Size       uint32
	MaxSize    uint32
	Flags      uint32
	Reserved   uint32
}

func encodeHeader(dst []byte, h Header) bool {
	if len(dst) < HeaderSize {
		return false
	}
	binary.LittleEndian.PutUint32(dst[0:4], h.Signature)
	dst[4] = h.Checksum
	dst[5] = h.Version
	dst[6] = h.HeaderSize
	dst[7] = h.Alignment
	binary.LittleEndian.PutUint32(dst[8:12], h.Size)
	binary.LittleEndian.PutUint32(dst[12:16], h.MaxSize)
	binary.LittleEndian.PutUint32(dst[16:20], h.Flags)
	binary.LittleEndian.PutUint32(dst[20:24], h.Reserved)
	return true
}

func decodeHeader(src []byte) (Header, bool) {
	if len(src) < HeaderSize {
		return Header{}, false
	}
	return Header{
		Signature:  binary.LittleEndian.Uint32(src[0:4]),
		Checksum:   src[4],
		Version:    src[5],
		HeaderSize: src[6],
		Alignment:  src[7],
		Size:       binary.LittleEndian.Uint32(src[8:12]),
		MaxSize:    binary.LittleEndian.Uint32(src[12:16]),
		Flags:      binary.LittleEndian.Uint32(src[16:20]),
		Reserved:   binary.LittleEndian.Uint32(src[20:24]),
	}, true
}

// ChecksumEnabled reports whether the header carries the checksum flag.
func (h Header) ChecksumEnabled() bool {
	return h.Flags&FlagChecksum != 0
}
