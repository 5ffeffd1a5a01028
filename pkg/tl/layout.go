package tl

import "encoding/binary"

// alignUp rounds n up to the next multiple of granule, a power of two.
func alignUp(n, granule uint64) uint64 {
	return (n + granule - 1) &^ (granule - 1)
}

func granule(alignment uint8) uint64 {
	return uint64(1) << alignment
}

// entryStep is the boundary each entry header starts on. It never exceeds
// 8 bytes; larger alignments are met with a filler entry instead.
func entryStep(alignment uint8) uint64 {
	return granule(min(alignment, DefaultAlignment))
}

// slot is where an entry lands. fill is the size of the empty filler entry
// (header included) that sits directly in front of it, zero when none.
type slot struct {
	offset uint64
	fill   uint64
}

// place returns the slot for an entry whose header could start at pos, a
// multiple of entryStep. The payload always starts on a 2^alignment
// boundary; with both ends on an 8-byte step the gap is either empty or
// large enough for a filler header.
func place(pos uint64, alignment uint8) slot {
	if granule(alignment) <= entryStep(alignment) {
		return slot{offset: pos}
	}
	off := alignUp(pos+EntryHeaderSize, granule(alignment)) - EntryHeaderSize
	return slot{offset: off, fill: off - pos}
}

// planLayout places entries behind the header, each one on the first slot
// after the previous payload. end is the used size: the end of the last
// payload rounded up to 2^alignment, or the header size for an empty list.
func planLayout(entries []*Entry, alignment uint8) (slots []slot, end uint64) {
	slots = make([]slot, len(entries))
	pos := uint64(HeaderSize)
	end = pos
	for i, e := range entries {
		s := place(pos, alignment)
		slots[i] = s
		end = s.offset + uint64(e.Size())
		pos = alignUp(end, entryStep(alignment))
	}
	if len(entries) > 0 {
		end = alignUp(end, granule(alignment))
	}
	return slots, end
}

// fillerHeader encodes the header of an empty entry spanning fill bytes.
func fillerHeader(fill uint32) [EntryHeaderSize]byte {
	return encodeEntryHeader(TagEmpty, fill-EntryHeaderSize)
}

func encodeEntryHeader(id, dataSize uint32) [EntryHeaderSize]byte {
	var b [EntryHeaderSize]byte
	b[0] = byte(id)
	b[1] = byte(id >> 8)
	b[2] = byte(id >> 16)
	b[3] = EntryHeaderSize
	binary.LittleEndian.PutUint32(b[4:8], dataSize)
	return b
}
