package tl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Entry is a single Transfer Entry. Its tag and payload are fixed once
// constructed; the offset is owned by the list that holds it.
type Entry struct {
	id     uint32
	data   []byte
	offset uint32
	fill   uint32
}

// NewEntry builds a detached entry. The payload is copied.
func NewEntry(id int64, data []byte) (*Entry, error) {
	if id < 0 || id > MaxTagID {
		return nil, fmt.Errorf("%w: %#x", ErrTagOutOfRange, id)
	}
	if uint64(len(data)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrDataTooLarge, len(data))
	}
	return &Entry{id: uint32(id), data: bytes.Clone(data)}, nil
}

// ID is the 24-bit tag.
func (e *Entry) ID() uint32 { return e.id }

// Data returns the payload. Callers must not modify it.
func (e *Entry) Data() []byte { return e.data }

// DataSize is the payload length in bytes.
func (e *Entry) DataSize() uint32 { return uint32(len(e.data)) }

// Size is the number of bytes the entry occupies without trailing padding.
func (e *Entry) Size() uint32 { return EntryHeaderSize + e.DataSize() }

// Offset is the position of the entry header from the start of the list.
// It is zero for entries that do not belong to a list.
func (e *Entry) Offset() uint32 { return e.offset }

// DataOffset is the position of the payload from the start of the list.
func (e *Entry) DataOffset() uint32 { return e.offset + EntryHeaderSize }

// HeaderBytes encodes the 8-byte entry header: 3-byte tag, header size,
// 4-byte data size, all little-endian.
func (e *Entry) HeaderBytes() [EntryHeaderSize]byte {
	return encodeEntryHeader(e.id, e.DataSize())
}

// SumOfBytes is the byte sum of the encoded header and payload, mod 256.
func (e *Entry) SumOfBytes() uint8 {
	hdr := e.HeaderBytes()
	return byteSum(hdr[:]) + byteSum(e.data)
}

// Equal compares tag and payload, ignoring the offset.
func (e *Entry) Equal(o *Entry) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.id == o.id && bytes.Equal(e.data, o.data)
}

func (e *Entry) String() string {
	name := "unknown"
	if info, ok := LookupTag(e.id); ok {
		name = info.Name
	}
	return fmt.Sprintf("%#x (%s) size=%d offset=%#x", e.id, name, e.DataSize(), e.offset)
}

// decodeEntryHeader unpacks an encoded entry header. The 3-byte tag is read
// as a 4-byte word with a zero byte prepended and shifted back down.
func decodeEntryHeader(src []byte) (id uint32, hdrSize uint8, dataSize uint32, ok bool) {
	if len(src) < EntryHeaderSize {
		return 0, 0, 0, false
	}
	var word [4]byte
	copy(word[1:], src[0:3])
	id = binary.LittleEndian.Uint32(word[:]) >> 8
	return id, src[3], binary.LittleEndian.Uint32(src[4:8]), true
}
