// Package tlyaml builds Transfer Lists from YAML documents.
//
// A document declares the list size, whether checksumming is enabled, and
// a sequence of entry records:
//
//	max_size: 0x1000
//	has_checksum: true
//	entries:
//	  - tag_id: fdt
//	    blob_file_path: build/fvp.dtb
//	  - tag_id: 0x104
//	    addr: 0x4001000
//	    size: 0x1000
//
// Records either point at a blob file or carry the named fields of the
// tag's registered payload encoding.
package tlyaml

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/samcharles93/tlc/pkg/tl"
)

// DefaultMaxSize is used when a document does not declare max_size.
const DefaultMaxSize uint32 = 0x1000

// Document is a decoded YAML list description.
type Document struct {
	MaxSize     *uint32  `yaml:"max_size"`
	HasChecksum *bool    `yaml:"has_checksum"`
	Entries     []Record `yaml:"entries"`
}

// Record is one entry description. Values keep the types yaml.v3 produces.
type Record map[string]any

// Size returns the declared max size or DefaultMaxSize.
func (d Document) Size() uint32 {
	if d.MaxSize == nil {
		return DefaultMaxSize
	}
	return *d.MaxSize
}

// Flags returns the header flags implied by has_checksum.
func (d Document) Flags() uint32 {
	if d.HasChecksum != nil && !*d.HasChecksum {
		return 0
	}
	return tl.FlagChecksum
}

// Decode reads a single YAML document from r.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, fmt.Errorf("%w: empty document", ErrInvalidEntry)
		}
		return Document{}, err
	}
	return doc, nil
}

// LoadFile decodes the YAML document at path.
func LoadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// BuildFile loads path and builds the list it describes. Relative file
// paths inside the document resolve against the document's directory.
func BuildFile(path string) (*tl.TransferList, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	b := Builder{BaseDir: filepath.Dir(path)}
	return b.Build(doc)
}
