package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tlc/internal/logger"
	"github.com/samcharles93/tlc/pkg/tl"
	"github.com/samcharles93/tlc/pkg/tlyaml"
)

// loadYAML decodes --from-yaml, or returns nil when it was not given.
func (f *entryFlags) loadYAML() (*tlyaml.Document, error) {
	if f.fromYAML == "" {
		return nil, nil
	}
	doc, err := tlyaml.LoadFile(f.fromYAML)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", f.fromYAML, err)
	}
	return &doc, nil
}

// apply adds the FDT, then every --entry, then the YAML records.
func (f *entryFlags) apply(ctx context.Context, l *tl.TransferList, doc *tlyaml.Document) error {
	log := logger.FromContext(ctx)

	align, err := parseAlign(f.align)
	if err != nil {
		return err
	}

	blobs := make([]blobSpec, 0, len(f.entries)+1)
	if f.fdt != "" {
		blobs = append(blobs, blobSpec{tag: tl.TagFDT, path: f.fdt})
	}
	for _, s := range f.entries {
		b, err := parseEntry(s)
		if err != nil {
			return err
		}
		blobs = append(blobs, b)
	}

	for _, b := range blobs {
		data, err := os.ReadFile(b.path)
		if err != nil {
			return err
		}
		e, err := l.AddAligned(int64(b.tag), data, align)
		if err != nil {
			return capacityHint(err)
		}
		log.Debug("added entry", "tag", b.tag, "path", b.path, "offset", e.Offset(), "data_size", e.DataSize())
	}

	if doc != nil {
		builder := tlyaml.Builder{BaseDir: filepath.Dir(f.fromYAML)}
		if err := builder.AddAll(l, doc.Entries); err != nil {
			return capacityHint(err)
		}
		log.Debug("added yaml entries", "path", f.fromYAML, "count", len(doc.Entries))
	}
	return nil
}

func capacityHint(err error) error {
	if errors.Is(err, tl.ErrMaxSizeExceeded) {
		return fmt.Errorf("TL max size exceeded, consider increasing with the option -s: %w", err)
	}
	return err
}

// fileArg returns the single positional argument of cmd.
func fileArg(cmd *cli.Command, name string) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", fmt.Errorf("%s: expected exactly one %s argument, got %d", cmd.Name, name, cmd.Args().Len())
	}
	return cmd.Args().First(), nil
}
