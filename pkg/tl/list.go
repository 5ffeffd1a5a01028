package tl

import (
	"fmt"
	"os"
	"slices"
)

// TransferList is an in-memory Transfer List. Entries are kept in on-disk
// order and their offsets always match the layout WriteTo produces.
//
// A TransferList is not safe for concurrent use.
type TransferList struct {
	checksum  uint8
	version   uint8
	alignment uint8
	size      uint32
	maxSize   uint32
	flags     uint32
	entries   []*Entry
}

// Option configures a list created by New.
type Option func(*TransferList) error

// WithFlags replaces the header flags (default FlagChecksum).
func WithFlags(flags uint32) Option {
	return func(l *TransferList) error {
		l.flags = flags
		return nil
	}
}

// WithVersion overrides the header version. Zero is reserved and values
// above 0xFF do not fit the field.
func WithVersion(v int) Option {
	return func(l *TransferList) error {
		if v <= 0 || v > 0xFF {
			return fmt.Errorf("%w: %#x", ErrInvalidVersion, v)
		}
		l.version = uint8(v)
		return nil
	}
}

// WithAlignment sets the initial alignment (log2 of the entry granule).
func WithAlignment(a uint8) Option {
	return func(l *TransferList) error {
		if a > MaxAlignment {
			return fmt.Errorf("%w: %d", ErrAlignmentRange, a)
		}
		l.alignment = a
		return nil
	}
}

// New creates an empty list able to grow up to maxSize bytes.
func New(maxSize uint32, opts ...Option) (*TransferList, error) {
	if maxSize < HeaderSize {
		return nil, fmt.Errorf("%w: %#x < %#x", ErrMaxSizeTooSmall, maxSize, HeaderSize)
	}
	l := &TransferList{
		version:   Version,
		alignment: DefaultAlignment,
		size:      HeaderSize,
		maxSize:   maxSize,
		flags:     FlagChecksum,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.updateChecksum()
	return l, nil
}

// Header field accessors. Size is the used size, MaxSize the capacity.
func (l *TransferList) Checksum() uint8  { return l.checksum }
func (l *TransferList) Version() uint8   { return l.version }
func (l *TransferList) Alignment() uint8 { return l.alignment }
func (l *TransferList) Size() uint32     { return l.size }
func (l *TransferList) MaxSize() uint32  { return l.maxSize }
func (l *TransferList) Flags() uint32    { return l.flags }

// Len is the number of entries, filler entries excluded.
func (l *TransferList) Len() int { return len(l.entries) }

// Entries returns the entries in on-disk order. Filler entries emitted for
// alignment are not part of the list and never appear here.
func (l *TransferList) Entries() []*Entry { return slices.Clone(l.entries) }

// ChecksumEnabled reports whether FlagChecksum is set.
func (l *TransferList) ChecksumEnabled() bool {
	return l.flags&FlagChecksum != 0
}

// Header returns the current header fields.
func (l *TransferList) Header() Header {
	return Header{
		Signature:  Signature,
		Checksum:   l.checksum,
		Version:    l.version,
		HeaderSize: HeaderSize,
		Alignment:  l.alignment,
		Size:       l.size,
		MaxSize:    l.maxSize,
		Flags:      l.flags,
	}
}

// HeaderBytes encodes the 24-byte list header.
func (l *TransferList) HeaderBytes() [HeaderSize]byte {
	var b [HeaderSize]byte
	encodeHeader(b[:], l.Header())
	return b
}

// SumOfBytes is the byte sum of the header, every entry and every filler
// header, mod 256. Padding and filler payloads are zero and never contribute.
func (l *TransferList) SumOfBytes() uint8 {
	hdr := l.HeaderBytes()
	sum := byteSum(hdr[:])
	for _, e := range l.entries {
		if e.fill > 0 {
			fh := fillerHeader(e.fill)
			sum += byteSum(fh[:])
		}
		sum += e.SumOfBytes()
	}
	return sum
}

func (l *TransferList) updateChecksum() {
	l.checksum = solveChecksum(l.SumOfBytes(), l.checksum)
}

// Add appends an entry using the current alignment.
func (l *TransferList) Add(tag int64, data []byte) (*Entry, error) {
	return l.AddAligned(tag, data, 0)
}

// AddAligned appends an entry and raises the list alignment to align when
// it is larger than the current one. Every payload starts on a 2^alignment
// boundary; above 8 bytes an empty filler entry is laid in front of an entry
// that would otherwise miss it. The list is left untouched on error; a
// capacity failure matches ErrMaxSizeExceeded.
//
// Capacity is checked against the padded end of the new entry, so an entry
// that would only fit without its trailing padding is rejected.
func (l *TransferList) AddAligned(tag int64, data []byte, align uint8) (*Entry, error) {
	if align > MaxAlignment {
		return nil, fmt.Errorf("%w: %d", ErrAlignmentRange, align)
	}
	if data == nil && tag != int64(TagEmpty) {
		return nil, fmt.Errorf("%w: tag %#x", ErrNoData, tag)
	}
	e, err := NewEntry(tag, data)
	if err != nil {
		return nil, err
	}

	alignment := max(l.alignment, align)
	entries := append(slices.Clone(l.entries), e)
	slots, end := planLayout(entries, alignment)
	if end > uint64(l.maxSize) {
		return nil, fmt.Errorf("%w: need %#x, max %#x", ErrMaxSizeExceeded, end, l.maxSize)
	}

	l.commit(entries, slots, end, alignment)
	return e, nil
}

// AddFromFile reads path and appends its contents as one entry.
func (l *TransferList) AddFromFile(tag int64, path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Add(tag, data)
}

// Entry returns the first entry carrying tag, or nil.
func (l *TransferList) Entry(tag uint32) *Entry {
	for _, e := range l.entries {
		if e.id == tag {
			return e
		}
	}
	return nil
}

// EntryDataOffset returns the offset of the first matching entry's payload
// from the start of the list.
func (l *TransferList) EntryDataOffset(tag uint32) (uint32, error) {
	e := l.Entry(tag)
	if e == nil {
		return 0, fmt.Errorf("%w: %#x", ErrTagNotFound, tag)
	}
	return e.DataOffset(), nil
}

// RemoveTag drops every entry carrying tag and repacks the rest behind the
// header. It returns the number of entries removed.
func (l *TransferList) RemoveTag(tag uint32) int {
	kept := make([]*Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if e.id != tag {
			kept = append(kept, e)
		}
	}
	removed := len(l.entries) - len(kept)
	slots, end := planLayout(kept, l.alignment)
	l.commit(kept, slots, end, l.alignment)
	return removed
}

func (l *TransferList) commit(entries []*Entry, slots []slot, end uint64, alignment uint8) {
	for i, e := range entries {
		e.offset = uint32(slots[i].offset)
		e.fill = uint32(slots[i].fill)
	}
	l.entries = entries
	l.alignment = alignment
	l.size = uint32(end)
	l.updateChecksum()
}
