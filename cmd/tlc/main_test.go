package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/samcharles93/tlc/internal/api"
	"github.com/samcharles93/tlc/pkg/tl"
)

// runTLC runs the CLI with an isolated config file and returns stdout.
func runTLC(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfg, []byte("log_level: error\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return runTLCWithConfig(t, cfg, args...)
}

func runTLCWithConfig(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp(&stdout, &stderr)
	argv := append([]string{"tlc", "--config", cfg}, args...)
	err := app.Run(context.Background(), argv)
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runTLC(t, args...)
	if err != nil {
		t.Fatalf("tlc %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func writeBlob(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func openList(t *testing.T, path string) *tl.TransferList {
	t.Helper()
	l, err := tl.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	return l
}

func TestCreateEmpty(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "tl.bin")
	mustRun(t, "create", out)

	l := openList(t, out)
	if l.Len() != 0 || l.Size() != tl.HeaderSize || l.MaxSize() != 0x1000 {
		t.Fatalf("unexpected list: len=%d size=%#x max=%#x", l.Len(), l.Size(), l.MaxSize())
	}
	if !l.ChecksumEnabled() || l.SumOfBytes() != 0 {
		t.Fatalf("checksum should be enabled and valid")
	}
}

func TestCreateWithFDTAndFlags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fdt := writeBlob(t, dir, "fdt.dtb", make([]byte, 100))
	out := filepath.Join(dir, "tl.bin")
	mustRun(t, "create", "--fdt", fdt, "--size", "1000", "--flags", "0", out)

	l := openList(t, out)
	if l.MaxSize() != 1000 || l.Flags() != 0 {
		t.Fatalf("max=%d flags=%#x", l.MaxSize(), l.Flags())
	}
	if e := l.Entry(tl.TagFDT); e == nil || e.DataSize() != 100 {
		t.Fatalf("fdt entry missing or wrong size")
	}
}

func TestCreateMaxSizeExceeded(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fdt := writeBlob(t, dir, "fdt.dtb", make([]byte, 6000))
	out := filepath.Join(dir, "tl.bin")

	_, err := runTLC(t, "create", "--fdt", fdt, out)
	if err == nil {
		t.Fatalf("expected capacity error")
	}
	if !strings.Contains(err.Error(), "TL max size exceeded, consider increasing with the option -s") {
		t.Fatalf("unexpected message: %v", err)
	}
	if !errors.Is(err, tl.ErrMaxSizeExceeded) {
		t.Fatalf("expected ErrMaxSizeExceeded in chain, got %v", err)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("failed create should not write %s", out)
	}
}

func TestAddEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "tl.bin")
	empty := writeBlob(t, dir, "empty.bin", nil)
	blob := writeBlob(t, dir, "blob.bin", []byte{1, 2, 3})
	mustRun(t, "create", out)

	mustRun(t, "add", "--entry", "0:"+empty, out)
	mustRun(t, "add", "--entry", "hob_list:"+blob, "--entry", "0x200:"+blob, out)

	l := openList(t, out)
	if l.Len() != 3 {
		t.Fatalf("entries: got %d want 3", l.Len())
	}
	got := []uint32{}
	for _, e := range l.Entries() {
		got = append(got, e.ID())
	}
	if got[0] != tl.TagEmpty || got[1] != tl.TagHOBList || got[2] != 0x200 {
		t.Fatalf("unexpected tags %v", got)
	}

	if _, err := runTLC(t, "add", "--entry", "nonsense", out); err == nil {
		t.Fatalf("expected error for malformed --entry")
	}
}

func TestAddRaisesAlignment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "tl.bin")
	blob := writeBlob(t, dir, "blob.bin", []byte{0xAA})
	mustRun(t, "create", out)
	mustRun(t, "add", "--entry", "fdt:"+blob, "--align", "4", out)

	l := openList(t, out)
	if l.Alignment() != 4 {
		t.Fatalf("alignment: got %d want 4", l.Alignment())
	}
	if _, err := runTLC(t, "add", "--entry", "fdt:"+blob, "--align", "40", out); !errors.Is(err, tl.ErrAlignmentRange) {
		t.Fatalf("expected ErrAlignmentRange, got %v", err)
	}
}

func TestInfoSections(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "tl.bin")
	fdt := writeBlob(t, dir, "fdt.dtb", make([]byte, 64))
	mustRun(t, "create", "--fdt", fdt, out)

	all := mustRun(t, "info", out)
	if !strings.Contains(all, "signature") || !strings.Contains(all, "id") {
		t.Fatalf("info output missing sections:\n%s", all)
	}
	header := mustRun(t, "info", "--header", out)
	if !strings.Contains(header, "signature  0x4a0fb10b") || strings.Contains(header, "id") {
		t.Fatalf("header output:\n%s", header)
	}
	entries := mustRun(t, "info", "--entries", out)
	if strings.Contains(entries, "signature") || !strings.Contains(entries, "id         0x1 (fdt)") {
		t.Fatalf("entries output:\n%s", entries)
	}

	off := strings.TrimSpace(mustRun(t, "info", "--fdt-offset", out))
	if n, err := strconv.Atoi(off); err != nil || n != 0x20 {
		t.Fatalf("fdt offset: got %q", off)
	}
}

func TestInfoJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "tl.bin")
	fdt := writeBlob(t, dir, "fdt.dtb", make([]byte, 10))
	mustRun(t, "create", "--fdt", fdt, out)

	var info api.ListInfo
	if err := json.Unmarshal([]byte(mustRun(t, "info", "--json", out)), &info); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if info.Header.Signature != tl.Signature || len(info.Entries) != 1 || info.Entries[0].Name != "fdt" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestInfoFDTOffsetMissing(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "tl.bin")
	mustRun(t, "create", out)
	if _, err := runTLC(t, "info", "--fdt-offset", out); !errors.Is(err, tl.ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestRemoveTags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "tl.bin")
	blob := writeBlob(t, dir, "blob.bin", []byte{1, 2, 3, 4})
	mustRun(t, "create", "--entry", "0:"+blob, "--entry", "fdt:"+blob, "--entry", "0:"+blob, out)

	mustRun(t, "remove", "--tags", "0", out)
	l := openList(t, out)
	if l.Len() != 1 || l.Entries()[0].ID() != tl.TagFDT {
		t.Fatalf("unexpected entries after remove: %v", l.Entries())
	}
	if l.Entries()[0].Offset() != tl.HeaderSize {
		t.Fatalf("remaining entry should be repacked at the header end")
	}
}

func TestUnpack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "tl.bin")
	fdt := writeBlob(t, dir, "fdt.dtb", []byte("device-tree"))
	mustRun(t, "create", "--entry", "1:"+fdt, "--entry", "1:"+fdt, out)

	dest := filepath.Join(dir, "unpacked")
	mustRun(t, "unpack", "-C", dest, out)
	for _, name := range []string{"te_0_1.bin", "te_1_1.bin"} {
		data, err := os.ReadFile(filepath.Join(dest, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if string(data) != "device-tree" {
			t.Fatalf("%s: got %q", name, data)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.bin")
	mustRun(t, "create", good)
	if out := mustRun(t, "validate", good); !strings.Contains(out, "valid") {
		t.Fatalf("validate output: %q", out)
	}

	buf, err := os.ReadFile(good)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	tests := []struct {
		name   string
		mutate func([]byte)
		want   error
	}{
		{
			name:   "bad signature",
			mutate: func(b []byte) { b[0] = 0xEF },
			want:   tl.ErrInvalidSignature,
		},
		{
			name:   "version zero",
			mutate: func(b []byte) { b[4] += b[5]; b[5] = 0 },
			want:   tl.ErrInvalidVersion,
		},
		{
			name:   "newer version",
			mutate: func(b []byte) { b[5]++; b[4]-- },
		},
		{
			name:   "checksum",
			mutate: func(b []byte) { b[4]++ },
			want:   tl.ErrChecksum,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := bytes.Clone(buf)
			tt.mutate(b)
			path := writeBlob(t, t.TempDir(), "tl.bin", b)
			_, err := runTLC(t, "validate", path)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected valid list, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGenHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.bin")
	mustRun(t, "create", empty)
	hdr := filepath.Join(dir, "empty-tl.h")
	mustRun(t, "gen-header", "-O", hdr, empty)

	text, err := os.ReadFile(hdr)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	size := regexp.MustCompile(`SIZE\s+(0x[0-9a-fA-F]+|\d+)`).FindStringSubmatch(string(text))
	if size == nil || size[1] != "0x18" {
		t.Fatalf("first SIZE define: %v\n%s", size, text)
	}
	if !strings.Contains(string(text), "#ifndef EMPTY_TL_H") || strings.Contains(string(text), "DTB_OFFSET") {
		t.Fatalf("unexpected header:\n%s", text)
	}

	withFDT := filepath.Join(dir, "fdt.bin")
	fdt := writeBlob(t, dir, "fdt.dtb", make([]byte, 32))
	mustRun(t, "create", "--size", "1000", "--fdt", fdt, withFDT)
	hdr = filepath.Join(dir, "fdt.h")
	mustRun(t, "gen-header", "--output", hdr, withFDT)
	text, err = os.ReadFile(hdr)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	m := regexp.MustCompile(`DTB_OFFSET\s+(\d+)`).FindStringSubmatch(string(text))
	if m == nil || m[1] != "32" {
		t.Fatalf("DTB_OFFSET: %v\n%s", m, text)
	}
}

func TestCreateFromYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeBlob(t, dir, "fdt.dtb", []byte{0xD0, 0x0D, 0xFE, 0xED})
	doc := writeBlob(t, dir, "tl.yaml", []byte(`max_size: 0x300
has_checksum: false
entries:
  - tag_id: fdt
    blob_file_path: fdt.dtb
  - tag_id: sram_layout
    addr: 0x4000000
    size: 0x1000
`))
	out := filepath.Join(dir, "tl.bin")
	mustRun(t, "create", "--from-yaml", doc, out)

	l := openList(t, out)
	if l.MaxSize() != 0x300 || l.ChecksumEnabled() {
		t.Fatalf("document header settings not applied: max=%#x flags=%#x", l.MaxSize(), l.Flags())
	}
	if l.Len() != 2 || l.Entry(tl.TagSRAMLayout) == nil {
		t.Fatalf("unexpected entries %v", l.Entries())
	}

	override := filepath.Join(dir, "override.bin")
	mustRun(t, "create", "--from-yaml", doc, "--size", "0x800", override)
	if got := openList(t, override).MaxSize(); got != 0x800 {
		t.Fatalf("--size should override the document: got %#x", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeBlob(t, dir, "config.yaml", []byte("max_size: 0x2000\nchecksum: false\nlog_level: error\n"))
	out := filepath.Join(dir, "tl.bin")
	if _, err := runTLCWithConfig(t, cfg, "create", out); err != nil {
		t.Fatalf("create: %v", err)
	}
	l := openList(t, out)
	if l.MaxSize() != 0x2000 || l.Flags() != 0 {
		t.Fatalf("config defaults not applied: max=%#x flags=%#x", l.MaxSize(), l.Flags())
	}

	if _, err := runTLCWithConfig(t, filepath.Join(dir, "missing.yaml"), "version"); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
	bad := writeBlob(t, dir, "bad.yaml", []byte("log_format: xml\n"))
	if _, err := runTLCWithConfig(t, bad, "version"); err == nil {
		t.Fatalf("expected error for unknown log format")
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out := mustRun(t, "version")
	if !strings.Contains(out, "version:") || !strings.Contains(out, "tl format:  1") {
		t.Fatalf("version output: %q", out)
	}
}

func TestIncludeGuard(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"header.h":        "HEADER_H",
		"out/tl-hdr.h":    "TL_HDR_H",
		"2nd.h":           "TL_2ND_H",
		"/tmp/x/fvp.tl.h": "FVP_TL_H",
	}
	for in, want := range tests {
		if got := includeGuard(in); got != want {
			t.Errorf("includeGuard(%q): got %q want %q", in, got, want)
		}
	}
}
