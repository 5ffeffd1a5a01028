package tl

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Parse decodes a serialised list. The header is checked first (signature,
// version, sizes), then entries are rebuilt through the normal add path so
// the parsed list keeps the same bookkeeping as a built one, and finally the
// checksum. Bytes past the list are ignored.
func Parse(buf []byte) (*TransferList, error) {
	h, ok := decodeHeader(buf)
	if !ok {
		return nil, fmt.Errorf("%w: short header (%d bytes)", ErrCorrupt, len(buf))
	}
	return parse(h, byteSource(buf))
}

// Validate reports whether buf holds a well-formed list.
func Validate(buf []byte) error {
	_, err := Parse(buf)
	return err
}

// Decode reads one list from r. It consumes the header, the recorded used
// size and any entry bytes that run past it, and nothing else.
func Decode(r io.Reader) (*TransferList, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: short header", ErrCorrupt)
		}
		return nil, err
	}
	h, _ := decodeHeader(hdr[:])
	return parse(h, &streamSource{r: r, buf: hdr[:]})
}

// parse walks the entries of a list whose header is h. The walk stops once
// the rebuilt list covers the used size, or once the unpadded entry bytes
// do: lists that account used size without inter-entry padding record the
// latter.
func parse(h Header, src source) (*TransferList, error) {
	if err := checkHeader(h); err != nil {
		return nil, err
	}
	used := uint64(h.Size)
	buf, err := src.prefix(used)
	if err != nil {
		return nil, err
	}

	l := &TransferList{
		checksum:  h.Checksum,
		version:   h.Version,
		alignment: h.Alignment,
		size:      HeaderSize,
		maxSize:   h.MaxSize,
		flags:     h.Flags,
	}

	limit := uint64(h.MaxSize)
	step := entryStep(h.Alignment)
	pos := uint64(HeaderSize)
	raw := uint64(HeaderSize)
	extent := used
	for uint64(l.size) < used && raw < used {
		if pos+EntryHeaderSize > limit {
			return nil, fmt.Errorf("%w: entry header at %#x past max size %#x", ErrCorrupt, pos, limit)
		}
		if buf, err = src.prefix(max(extent, pos+EntryHeaderSize)); err != nil {
			return nil, err
		}
		id, hdrSize, dataSize, _ := decodeEntryHeader(buf[pos:])
		if hdrSize != EntryHeaderSize {
			return nil, fmt.Errorf("%w: entry at %#x has header size %d", ErrCorrupt, pos, hdrSize)
		}
		end := pos + EntryHeaderSize + uint64(dataSize)
		if end > limit {
			return nil, fmt.Errorf("%w: entry at %#x ends past max size %#x", ErrCorrupt, pos, limit)
		}
		extent = max(extent, end)
		if buf, err = src.prefix(extent); err != nil {
			return nil, err
		}

		if s := place(pos, l.alignment); id == TagEmpty && s.fill > 0 && end == s.offset {
			pos = s.offset
			continue
		}
		e, err := l.Add(int64(id), buf[pos+EntryHeaderSize:end])
		if err != nil {
			return nil, fmt.Errorf("%w: entry at %#x: %w", ErrCorrupt, pos, err)
		}
		if uint64(e.offset) != pos {
			return nil, fmt.Errorf("%w: entry at %#x, expected %#x", ErrMisaligned, pos, e.offset)
		}
		raw += uint64(e.Size())
		pos = alignUp(end, step)
	}

	if h.ChecksumEnabled() && byteSum(buf[:extent]) != 0 {
		return nil, fmt.Errorf("%w: checksum %#x", ErrChecksum, h.Checksum)
	}
	return l, nil
}

// Open loads a list from a file. The file is memory-mapped where the
// platform allows it and read into memory otherwise; no mapping outlives
// the call.
func Open(path string) (*TransferList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := st.Size()
	if size64 < HeaderSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrCorrupt, path, size64)
	}
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: %s is too large", ErrCorrupt, path)
	}

	data, unmap, err := mapFile(f, int(size64))
	if err != nil {
		data, err = readAllAt(f, int(size64))
		if err != nil {
			return nil, err
		}
		unmap = func() error { return nil }
	}
	l, perr := Parse(data)
	if uerr := unmap(); perr == nil && uerr != nil {
		return nil, uerr
	}
	return l, perr
}

func checkHeader(h Header) error {
	if h.Signature != Signature {
		return fmt.Errorf("%w: %#x", ErrInvalidSignature, h.Signature)
	}
	if h.Version == 0 {
		return fmt.Errorf("%w: %#x", ErrInvalidVersion, h.Version)
	}
	if h.HeaderSize != HeaderSize {
		return fmt.Errorf("%w: header size %#x", ErrCorrupt, h.HeaderSize)
	}
	if h.Alignment > MaxAlignment {
		return fmt.Errorf("%w: alignment %d", ErrCorrupt, h.Alignment)
	}
	if h.Size < HeaderSize || h.Size > h.MaxSize {
		return fmt.Errorf("%w: used size %#x, max size %#x", ErrCorrupt, h.Size, h.MaxSize)
	}
	return nil
}

// source hands out a growing prefix of a serialised list.
type source interface {
	prefix(n uint64) ([]byte, error)
}

type byteSource []byte

func (b byteSource) prefix(n uint64) ([]byte, error) {
	if uint64(len(b)) < n {
		return nil, fmt.Errorf("%w: truncated, have %#x of %#x bytes", ErrCorrupt, len(b), n)
	}
	return b, nil
}

// streamSource reads from r only as far as the walk has asked for.
type streamSource struct {
	r   io.Reader
	buf []byte
}

func (s *streamSource) prefix(n uint64) ([]byte, error) {
	have := uint64(len(s.buf))
	if have >= n {
		return s.buf, nil
	}
	grown := append(s.buf[:have:have], make([]byte, n-have)...)
	if _, err := io.ReadFull(s.r, grown[have:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: truncated at %#x bytes", ErrCorrupt, have)
		}
		return nil, err
	}
	s.buf = grown
	return s.buf, nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
