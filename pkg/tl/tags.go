package tl

import (
	"fmt"
	"strconv"
	"strings"
)

// Standard tag ids.
const (
	TagEmpty                  uint32 = 0
	TagFDT                    uint32 = 1
	TagHOBBlock               uint32 = 2
	TagHOBList                uint32 = 3
	TagACPITableAggregate     uint32 = 4
	TagTPMEventLogTable       uint32 = 5
	TagTPMCRBBaseAddressTable uint32 = 6
	TagOPTEEPageablePart      uint32 = 0x100
	TagDTSPMCManifest         uint32 = 0x101
	TagExecEPInfo             uint32 = 0x102
	TagSRAMLayout             uint32 = 0x104
)

// PayloadKind says how an entry payload is produced from a structured record.
type PayloadKind uint8

const (
	// PayloadBlob entries can only be added from a file.
	PayloadBlob PayloadKind = iota
	// PayloadFields entries are packed from named little-endian fields.
	PayloadFields
	// PayloadEventLog is a 4-byte flags word followed by an event log file.
	PayloadEventLog
	// PayloadEntryPoint is an 88-byte entry_point_info structure.
	PayloadEntryPoint
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadBlob:
		return "blob"
	case PayloadFields:
		return "fields"
	case PayloadEventLog:
		return "event_log"
	case PayloadEntryPoint:
		return "entry_point"
	default:
		return "PayloadKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// FieldWidth is the encoded width of a packed field in bytes.
type FieldWidth uint8

const (
	U8  FieldWidth = 1
	U16 FieldWidth = 2
	U32 FieldWidth = 4
	U64 FieldWidth = 8
)

// Field is one named value of a packed payload.
type Field struct {
	Name  string
	Width FieldWidth
}

// TagInfo describes a known tag and its payload encoding.
type TagInfo struct {
	ID      uint32
	Name    string
	Payload PayloadKind
	Fields  []Field
	// Pad is the number of zero bytes appended after Fields.
	Pad int
}

// PackedSize is the encoded size of a PayloadFields payload.
func (t TagInfo) PackedSize() int {
	n := t.Pad
	for _, f := range t.Fields {
		n += int(f.Width)
	}
	return n
}

var tagTable = []TagInfo{
	{ID: TagEmpty, Name: "empty", Payload: PayloadFields, Pad: 4},
	{ID: TagFDT, Name: "fdt"},
	{ID: TagHOBBlock, Name: "hob_block"},
	{ID: TagHOBList, Name: "hob_list"},
	{ID: TagACPITableAggregate, Name: "acpi_table_aggregate"},
	{
		ID: TagTPMEventLogTable, Name: "tpm_event_log_table", Payload: PayloadEventLog,
		Fields: []Field{{Name: "flags", Width: U32}},
	},
	{
		ID: TagTPMCRBBaseAddressTable, Name: "tpm_crb_base_address_table", Payload: PayloadFields,
		Fields: []Field{{Name: "crb_base_address", Width: U64}, {Name: "crb_size", Width: U32}},
	},
	{
		ID: TagOPTEEPageablePart, Name: "optee_pageable_part", Payload: PayloadFields,
		Fields: []Field{{Name: "pp_addr", Width: U64}},
	},
	{ID: TagDTSPMCManifest, Name: "dt_spmc_manifest"},
	{ID: TagExecEPInfo, Name: "exec_ep_info", Payload: PayloadEntryPoint},
	{
		ID: TagSRAMLayout, Name: "sram_layout", Payload: PayloadFields,
		Fields: []Field{{Name: "addr", Width: U64}, {Name: "size", Width: U64}},
	},
}

// Tags lists the known tags in id order.
func Tags() []TagInfo {
	out := make([]TagInfo, len(tagTable))
	copy(out, tagTable)
	return out
}

// LookupTag returns the descriptor of a known tag id.
func LookupTag(id uint32) (TagInfo, bool) {
	for _, t := range tagTable {
		if t.ID == id {
			return t, true
		}
	}
	return TagInfo{}, false
}

// TagByName returns the descriptor of a known tag name.
func TagByName(name string) (TagInfo, bool) {
	for _, t := range tagTable {
		if t.Name == name {
			return t, true
		}
	}
	return TagInfo{}, false
}

// TagName returns the registered name of id, or "" when unknown.
func TagName(id uint32) string {
	t, _ := LookupTag(id)
	return t.Name
}

// ResolveTag maps a tag name, decimal id or 0x-prefixed hex id to a tag id.
// Unknown numeric ids are accepted as long as they fit 24 bits.
func ResolveTag(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if t, ok := TagByName(s); ok {
		return t.ID, nil
	}
	n, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown tag %q", ErrTagOutOfRange, s)
	}
	if n < 0 || n > MaxTagID {
		return 0, fmt.Errorf("%w: %#x", ErrTagOutOfRange, n)
	}
	return uint32(n), nil
}
