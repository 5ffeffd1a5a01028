package tlyaml

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// EntryPointInfoSize is the encoded size of an entry_point_info structure.
const EntryPointInfoSize = 88

// Entry point attribute bits.
const (
	EPSecure        uint32 = 0x0
	EPNonSecure     uint32 = 0x1
	EPRealm         uint32 = 0x21
	EPEELittle      uint32 = 0x0
	EPEEBig         uint32 = 0x2
	EPSTDisable     uint32 = 0x0
	EPSTEnable      uint32 = 0x4
	EPNonExecutable uint32 = 0x0
	EPExecutable    uint32 = 0x8
	EPFirstExe      uint32 = 0x10
)

var epAttrNames = map[string]uint32{
	"EP_SECURE":         EPSecure,
	"EP_NON_SECURE":     EPNonSecure,
	"EP_REALM":          EPRealm,
	"EP_EE_LITTLE":      EPEELittle,
	"EP_EE_BIG":         EPEEBig,
	"EP_ST_DISABLE":     EPSTDisable,
	"EP_ST_ENABLE":      EPSTEnable,
	"EP_NON_EXECUTABLE": EPNonExecutable,
	"EP_EXECUTABLE":     EPExecutable,
	"EP_FIRST_EXE":      EPFirstExe,
}

// EntryPointInfo is the payload of an exec_ep_info entry.
type EntryPointInfo struct {
	Type    uint8
	Version uint8
	Attr    uint32
	PC      uint64
	SPSR    uint32
	Args    [8]uint64
}

// MarshalBinary encodes the structure: param header (type, version, size,
// attr), pc, spsr, 4 reserved bytes, then the eight arguments.
func (ep EntryPointInfo) MarshalBinary() ([]byte, error) {
	b := make([]byte, EntryPointInfoSize)
	b[0] = ep.Type
	b[1] = ep.Version
	binary.LittleEndian.PutUint16(b[2:4], EntryPointInfoSize)
	binary.LittleEndian.PutUint32(b[4:8], ep.Attr)
	binary.LittleEndian.PutUint64(b[8:16], ep.PC)
	binary.LittleEndian.PutUint32(b[16:20], ep.SPSR)
	for i, a := range ep.Args {
		binary.LittleEndian.PutUint64(b[24+8*i:], a)
	}
	return b, nil
}

// ParseEPAttr accepts either a number or EP_* names joined by '|'.
func ParseEPAttr(v any) (uint32, error) {
	s, ok := v.(string)
	if !ok {
		n, err := toUint64(v)
		if err != nil {
			return 0, fmt.Errorf("attr: %w", err)
		}
		if n > 0xFFFFFFFF {
			return 0, fmt.Errorf("%w: attr=%#x", ErrFieldRange, n)
		}
		return uint32(n), nil
	}
	var attr uint32
	for _, name := range strings.Split(s, "|") {
		bit, ok := epAttrNames[strings.TrimSpace(name)]
		if !ok {
			return 0, fmt.Errorf("%w: unknown attribute %q", ErrInvalidEntry, strings.TrimSpace(name))
		}
		attr |= bit
	}
	return attr, nil
}

func entryPointPayload(rec Record) ([]byte, error) {
	raw, ok := rec["ep_info"]
	if !ok {
		return nil, fmt.Errorf("%w: ep_info", ErrMissingField)
	}
	epMap, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: ep_info must be a mapping", ErrInvalidEntry)
	}
	hRaw, ok := epMap["h"]
	if !ok {
		return nil, fmt.Errorf("%w: ep_info.h", ErrMissingField)
	}
	h, ok := hRaw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: ep_info.h must be a mapping", ErrInvalidEntry)
	}

	var ep EntryPointInfo
	typ, err := fieldValue(h, "type", 8)
	if err != nil {
		return nil, err
	}
	ver, err := fieldValue(h, "version", 8)
	if err != nil {
		return nil, err
	}
	attrRaw, ok := h["attr"]
	if !ok {
		return nil, fmt.Errorf("%w: attr", ErrMissingField)
	}
	if ep.Attr, err = ParseEPAttr(attrRaw); err != nil {
		return nil, err
	}
	ep.Type, ep.Version = uint8(typ), uint8(ver)

	if ep.PC, err = fieldValue(epMap, "pc", 64); err != nil {
		return nil, err
	}
	spsr, err := fieldValue(epMap, "spsr", 32)
	if err != nil {
		return nil, err
	}
	ep.SPSR = uint32(spsr)

	if argsRaw, ok := epMap["args"]; ok {
		args, ok := argsRaw.([]any)
		if !ok || len(args) > len(ep.Args) {
			return nil, fmt.Errorf("%w: args must be a list of at most %d values", ErrInvalidEntry, len(ep.Args))
		}
		for i, a := range args {
			if ep.Args[i], err = toUint64(a); err != nil {
				return nil, fmt.Errorf("args[%d]: %w", i, err)
			}
		}
	}
	return ep.MarshalBinary()
}
