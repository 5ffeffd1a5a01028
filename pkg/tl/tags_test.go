package tl

import (
	"errors"
	"testing"
)

func TestResolveTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{in: "fdt", want: TagFDT},
		{in: "exec_ep_info", want: TagExecEPInfo},
		{in: "0x102", want: 0x102},
		{in: "258", want: 258},
		{in: " 1 ", want: 1},
		{in: "0xffffff", want: MaxTagID},
		{in: "0x1000000", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "not_a_tag", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ResolveTag(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrTagOutOfRange) {
				t.Fatalf("%q: expected ErrTagOutOfRange, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("%q: got %#x want %#x", tt.in, got, tt.want)
		}
	}
}

func TestTagTable(t *testing.T) {
	t.Parallel()

	seen := map[uint32]bool{}
	names := map[string]bool{}
	for _, info := range Tags() {
		if seen[info.ID] || names[info.Name] {
			t.Fatalf("duplicate tag %#x %q", info.ID, info.Name)
		}
		seen[info.ID] = true
		names[info.Name] = true
	}

	sizes := map[uint32]int{
		TagEmpty:                  4,
		TagTPMCRBBaseAddressTable: 12,
		TagOPTEEPageablePart:      8,
		TagSRAMLayout:             16,
	}
	for id, want := range sizes {
		info, ok := LookupTag(id)
		if !ok {
			t.Fatalf("tag %#x missing", id)
		}
		if got := info.PackedSize(); got != want {
			t.Fatalf("tag %#x packed size: got %d want %d", id, got, want)
		}
	}
	if TagName(TagHOBBlock) != "hob_block" {
		t.Fatalf("unexpected name %q", TagName(TagHOBBlock))
	}
	if TagName(0x9999) != "" {
		t.Fatalf("unknown tag should have no name")
	}
}
