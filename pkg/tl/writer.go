package tl

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

const writerPadBufSize = 4096

// WriteTo serialises the list: header, then every entry preceded by the zero
// padding and filler entry that move it to its offset, then padding up to
// the used size.
func (l *TransferList) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	hdr := l.HeaderBytes()
	if err := writeFull(cw, hdr[:]); err != nil {
		return cw.n, err
	}
	for _, e := range l.entries {
		start := uint64(e.offset) - uint64(e.fill)
		end := uint64(e.offset) + uint64(e.Size())
		if end > uint64(l.maxSize) || start < uint64(cw.n) || start > uint64(e.offset) {
			return cw.n, fmt.Errorf("%w: tag %#x at %#x", ErrLayoutCorrupt, e.id, e.offset)
		}
		if err := writeZeros(cw, start-uint64(cw.n)); err != nil {
			return cw.n, err
		}
		if e.fill > 0 {
			fh := fillerHeader(e.fill)
			if err := writeFull(cw, fh[:]); err != nil {
				return cw.n, err
			}
			if err := writeZeros(cw, uint64(e.fill)-EntryHeaderSize); err != nil {
				return cw.n, err
			}
		}
		eh := e.HeaderBytes()
		if err := writeFull(cw, eh[:]); err != nil {
			return cw.n, err
		}
		if err := writeFull(cw, e.data); err != nil {
			return cw.n, err
		}
	}
	if uint64(cw.n) > uint64(l.size) {
		return cw.n, fmt.Errorf("%w: wrote %#x, size %#x", ErrLayoutCorrupt, cw.n, l.size)
	}
	err := writeZeros(cw, uint64(l.size)-uint64(cw.n))
	return cw.n, err
}

// MarshalBinary returns the serialised list.
func (l *TransferList) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(l.size))
	if _, err := l.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile serialises the list into path, truncating any existing file.
func (l *TransferList) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err = l.WriteTo(f); err != nil {
		return err
	}
	return f.Sync()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

func writeZeros(w io.Writer, n uint64) error {
	if n == 0 {
		return nil
	}
	var pad [writerPadBufSize]byte
	for n > 0 {
		chunk := min(n, uint64(len(pad)))
		if err := writeFull(w, pad[:chunk]); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
