package api

import "github.com/samcharles93/tlc/pkg/tl"

// HeaderInfo is the JSON view of a list header.
type HeaderInfo struct {
	Signature       uint32 `json:"signature"`
	Checksum        uint8  `json:"checksum"`
	Version         uint8  `json:"version"`
	HeaderSize      uint8  `json:"hdr_size"`
	Alignment       uint8  `json:"alignment"`
	Size            uint32 `json:"size"`
	MaxSize         uint32 `json:"max_size"`
	Flags           uint32 `json:"flags"`
	ChecksumEnabled bool   `json:"checksum_enabled"`
}

// EntryInfo is the JSON view of one entry.
type EntryInfo struct {
	Index      int    `json:"index"`
	Tag        uint32 `json:"tag"`
	Name       string `json:"name,omitempty"`
	Offset     uint32 `json:"offset"`
	DataOffset uint32 `json:"data_offset"`
	DataSize   uint32 `json:"data_size"`
}

// ListInfo is what `tlc info --json` prints and POST /v1/info returns.
type ListInfo struct {
	Header  HeaderInfo  `json:"header"`
	Entries []EntryInfo `json:"entries"`
}

// Describe builds the JSON view of l.
func Describe(l *tl.TransferList) ListInfo {
	h := l.Header()
	info := ListInfo{
		Header: HeaderInfo{
			Signature:       h.Signature,
			Checksum:        h.Checksum,
			Version:         h.Version,
			HeaderSize:      h.HeaderSize,
			Alignment:       h.Alignment,
			Size:            h.Size,
			MaxSize:         h.MaxSize,
			Flags:           h.Flags,
			ChecksumEnabled: h.ChecksumEnabled(),
		},
		Entries: make([]EntryInfo, 0, l.Len()),
	}
	for i, e := range l.Entries() {
		info.Entries = append(info.Entries, EntryInfo{
			Index:      i,
			Tag:        e.ID(),
			Name:       tl.TagName(e.ID()),
			Offset:     e.Offset(),
			DataOffset: e.DataOffset(),
			DataSize:   e.DataSize(),
		})
	}
	return info
}

type ValidateResponse struct {
	ID    string `json:"id"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type InfoResponse struct {
	ID string `json:"id"`
	ListInfo
}

type FieldInfo struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
}

type TagDescriptor struct {
	ID      uint32      `json:"id"`
	Name    string      `json:"name"`
	Payload string      `json:"payload"`
	Fields  []FieldInfo `json:"fields,omitempty"`
	Pad     int         `json:"pad,omitempty"`
}

type TagsResponse struct {
	Object string          `json:"object"`
	Data   []TagDescriptor `json:"data"`
}

// Report is a stored result of a validate or info call.
type Report struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Created  int64     `json:"created_at"`
	Bytes    int       `json:"bytes"`
	Valid    bool      `json:"valid"`
	Error    string    `json:"error,omitempty"`
	ListInfo *ListInfo `json:"list,omitempty"`
}

type DeleteReportResp struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

func describeTags() []TagDescriptor {
	tags := tl.Tags()
	out := make([]TagDescriptor, 0, len(tags))
	for _, t := range tags {
		d := TagDescriptor{
			ID:      t.ID,
			Name:    t.Name,
			Payload: t.Payload.String(),
			Pad:     t.Pad,
		}
		for _, f := range t.Fields {
			d.Fields = append(d.Fields, FieldInfo{Name: f.Name, Width: int(f.Width)})
		}
		out = append(out, d)
	}
	return out
}
