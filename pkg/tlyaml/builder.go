package tlyaml

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samcharles93/tlc/pkg/tl"
)

// Builder turns records into entries of a list.
type Builder struct {
	// BaseDir resolves relative blob and event log paths.
	BaseDir string
}

// Build creates a list sized and flagged as the document says and adds
// every record in order.
func (b Builder) Build(doc Document) (*tl.TransferList, error) {
	l, err := tl.New(doc.Size(), tl.WithFlags(doc.Flags()))
	if err != nil {
		return nil, err
	}
	if err := b.AddAll(l, doc.Entries); err != nil {
		return nil, err
	}
	return l, nil
}

// AddAll adds records in order and stops at the first failure. Entries
// added before the failure stay in the list.
func (b Builder) AddAll(l *tl.TransferList, recs []Record) error {
	for i, rec := range recs {
		if _, err := b.Add(l, rec); err != nil {
			return &EntryError{Index: i, Tag: rec["tag_id"], Err: err}
		}
	}
	return nil
}

// Add converts one record and appends it to l.
func (b Builder) Add(l *tl.TransferList, rec Record) (*tl.Entry, error) {
	id, err := recordTag(rec)
	if err != nil {
		return nil, err
	}

	if _, ok := rec["blob_file_path"]; ok {
		path, err := stringValue(rec, "blob_file_path")
		if err != nil {
			return nil, err
		}
		return l.AddFromFile(int64(id), b.path(path))
	}

	info, ok := tl.LookupTag(id)
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrUnknownTag, id)
	}

	var data []byte
	switch info.Payload {
	case tl.PayloadEventLog:
		data, err = b.eventLog(rec)
	case tl.PayloadEntryPoint:
		data, err = entryPointPayload(rec)
	case tl.PayloadFields:
		data, err = packFields(info, rec)
	default:
		err = fmt.Errorf("%w: tag %s needs blob_file_path", ErrInvalidEntry, info.Name)
	}
	if err != nil {
		return nil, err
	}
	return l.Add(int64(id), data)
}

func (b Builder) path(p string) string {
	if filepath.IsAbs(p) || b.BaseDir == "" {
		return p
	}
	return filepath.Join(b.BaseDir, p)
}

// eventLog encodes a TPM event log table: 4-byte flags then the log.
func (b Builder) eventLog(rec Record) ([]byte, error) {
	flags, err := fieldValue(rec, "flags", 32)
	if err != nil {
		return nil, err
	}
	path, err := stringValue(rec, "event_log")
	if err != nil {
		return nil, err
	}
	log, err := os.ReadFile(b.path(path))
	if err != nil {
		return nil, err
	}
	data := make([]byte, 4, 4+len(log))
	binary.LittleEndian.PutUint32(data, uint32(flags))
	return append(data, log...), nil
}

func recordTag(rec Record) (uint32, error) {
	raw, ok := rec["tag_id"]
	if !ok {
		return 0, fmt.Errorf("%w: tag_id", ErrMissingField)
	}
	if s, ok := raw.(string); ok {
		return tl.ResolveTag(s)
	}
	v, err := toUint64(raw)
	if err != nil {
		return 0, fmt.Errorf("tag_id: %w", err)
	}
	if v > tl.MaxTagID {
		return 0, fmt.Errorf("%w: %#x", tl.ErrTagOutOfRange, v)
	}
	return uint32(v), nil
}

// packFields encodes the record's fields in registry order, little-endian
// and unpadded, followed by the descriptor's trailing zero bytes.
func packFields(info tl.TagInfo, rec Record) ([]byte, error) {
	out := make([]byte, 0, info.PackedSize())
	for _, f := range info.Fields {
		v, err := fieldValue(rec, f.Name, 8*int(f.Width))
		if err != nil {
			return nil, err
		}
		switch f.Width {
		case tl.U8:
			out = append(out, byte(v))
		case tl.U16:
			out = binary.LittleEndian.AppendUint16(out, uint16(v))
		case tl.U32:
			out = binary.LittleEndian.AppendUint32(out, uint32(v))
		case tl.U64:
			out = binary.LittleEndian.AppendUint64(out, v)
		}
	}
	return append(out, make([]byte, info.Pad)...), nil
}
