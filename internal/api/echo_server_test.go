package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tlc/pkg/tl"
)

func newTestEcho(maxBody int64) (*echo.Echo, *ReportStore) {
	store := NewReportStore(4)
	server := NewServer(Config{MaxBody: maxBody, Store: store})
	e := echo.New()
	server.Register(e)
	return e, store
}

func doBody(t *testing.T, e *echo.Echo, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "application/octet-stream")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func sampleList(t *testing.T) []byte {
	t.Helper()
	l, err := tl.New(0x200)
	if err != nil {
		t.Fatalf("new list: %v", err)
	}
	if _, err := l.Add(int64(tl.TagFDT), bytes.Repeat([]byte{0xD0}, 20)); err != nil {
		t.Fatalf("add fdt: %v", err)
	}
	if _, err := l.Add(int64(tl.TagSRAMLayout), make([]byte, 16)); err != nil {
		t.Fatalf("add sram: %v", err)
	}
	buf, err := l.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return buf
}

func TestValidateEndpoint(t *testing.T) {
	t.Parallel()

	e, store := newTestEcho(0)
	buf := sampleList(t)

	rec := doBody(t, e, http.MethodPost, "/v1/validate", buf)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var ok ValidateResponse
	decodeInto(t, rec, &ok)
	if !ok.Valid || ok.Error != "" {
		t.Fatalf("expected valid list, got %+v", ok)
	}
	if ok.ID == "" || rec.Header().Get(HeaderRequestID) != ok.ID {
		t.Fatalf("request id mismatch: body=%q header=%q", ok.ID, rec.Header().Get(HeaderRequestID))
	}

	broken := bytes.Clone(buf)
	broken[0] ^= 0xFF
	rec = doBody(t, e, http.MethodPost, "/v1/validate", broken)
	var bad ValidateResponse
	decodeInto(t, rec, &bad)
	if bad.Valid || bad.Error == "" {
		t.Fatalf("expected invalid list, got %+v", bad)
	}
	if store.Len() != 2 {
		t.Fatalf("store: got %d reports want 2", store.Len())
	}
}

func TestInfoEndpoint(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(0)
	rec := doBody(t, e, http.MethodPost, "/v1/info", sampleList(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var info InfoResponse
	decodeInto(t, rec, &info)
	if info.Header.Signature != tl.Signature || info.Header.MaxSize != 0x200 {
		t.Fatalf("unexpected header: %+v", info.Header)
	}
	if len(info.Entries) != 2 {
		t.Fatalf("entries: got %d want 2", len(info.Entries))
	}
	fdt := info.Entries[0]
	if fdt.Name != "fdt" || fdt.Offset != tl.HeaderSize || fdt.DataOffset != 0x20 || fdt.DataSize != 20 {
		t.Fatalf("unexpected fdt entry: %+v", fdt)
	}
	if info.Entries[1].Offset != 0x38 {
		t.Fatalf("sram offset: got %#x want 0x38", info.Entries[1].Offset)
	}

	rec = doBody(t, e, http.MethodGet, "/v1/reports/"+info.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get report status: got %d", rec.Code)
	}
	var report Report
	decodeInto(t, rec, &report)
	if report.Kind != "info" || !report.Valid || report.ListInfo == nil || len(report.ListInfo.Entries) != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}

	rec = doBody(t, e, http.MethodDelete, "/v1/reports/"+info.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete report status: got %d", rec.Code)
	}
	rec = doBody(t, e, http.MethodGet, "/v1/reports/"+info.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestInfoRejectsCorruptList(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(0)
	rec := doBody(t, e, http.MethodPost, "/v1/info", make([]byte, tl.HeaderSize))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestBodyLimits(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(32)
	rec := doBody(t, e, http.MethodPost, "/v1/validate", make([]byte, 64))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversized body: got %d", rec.Code)
	}
	rec = doBody(t, e, http.MethodPost, "/v1/validate", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body: got %d", rec.Code)
	}
}

func TestTagsEndpoint(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(0)
	rec := doBody(t, e, http.MethodGet, "/v1/tags", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	var tags TagsResponse
	decodeInto(t, rec, &tags)
	if len(tags.Data) != len(tl.Tags()) {
		t.Fatalf("tags: got %d want %d", len(tags.Data), len(tl.Tags()))
	}
	for _, d := range tags.Data {
		if d.Name == "sram_layout" {
			if d.Payload != "fields" || len(d.Fields) != 2 || d.Fields[1].Width != 8 {
				t.Fatalf("unexpected sram_layout descriptor: %+v", d)
			}
			return
		}
	}
	t.Fatalf("sram_layout missing from %+v", tags.Data)
}

func TestReportStoreEvictsOldest(t *testing.T) {
	t.Parallel()

	s := NewReportStore(2)
	s.Put(Report{ID: "a"})
	s.Put(Report{ID: "b"})
	s.Put(Report{ID: "c"})
	if _, ok := s.Get("a"); ok {
		t.Fatalf("oldest report should be evicted")
	}
	if _, ok := s.Get("c"); !ok {
		t.Fatalf("newest report missing")
	}
	if !s.Delete("b") || s.Delete("b") {
		t.Fatalf("delete should succeed once")
	}
	if s.Len() != 1 {
		t.Fatalf("len: got %d want 1", s.Len())
	}
}
