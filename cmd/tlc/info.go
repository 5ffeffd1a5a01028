package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tlc/internal/api"
	"github.com/samcharles93/tlc/pkg/tl"
)

func infoCmd() *cli.Command {
	var (
		showHeader  bool
		showEntries bool
		fdtOffset   bool
		asJSON      bool
	)

	return &cli.Command{
		Name:      "info",
		Usage:     "Print the header and entries of a transfer list",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "header", Usage: "print only the header", Destination: &showHeader},
			&cli.BoolFlag{Name: "entries", Usage: "print only the entries", Destination: &showEntries},
			&cli.BoolFlag{Name: "fdt-offset", Usage: "print the data offset of the FDT entry", Destination: &fdtOffset},
			&cli.BoolFlag{Name: "json", Usage: "print header and entries as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := fileArg(cmd, "FILE")
			if err != nil {
				return err
			}
			l, err := tl.Open(path)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer

			switch {
			case fdtOffset:
				off, err := l.EntryDataOffset(tl.TagFDT)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, off)
				return err
			case asJSON:
				b, err := json.MarshalIndent(api.Describe(l), "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "%s\n", b)
				return err
			}

			if !showHeader && !showEntries {
				showHeader, showEntries = true, true
			}
			if showHeader {
				writeHeader(w, l)
			}
			if showHeader && showEntries && l.Len() > 0 {
				_, _ = fmt.Fprintln(w)
			}
			if showEntries {
				writeEntries(w, l)
			}
			return nil
		},
	}
}

func writeHeader(w io.Writer, l *tl.TransferList) {
	h := l.Header()
	rows := []struct {
		key string
		val uint64
	}{
		{"signature", uint64(h.Signature)},
		{"checksum", uint64(h.Checksum)},
		{"version", uint64(h.Version)},
		{"hdr_size", uint64(h.HeaderSize)},
		{"alignment", uint64(h.Alignment)},
		{"size", uint64(h.Size)},
		{"max_size", uint64(h.MaxSize)},
		{"flags", uint64(h.Flags)},
	}
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%-10s %#x\n", r.key, r.val)
	}
}

func writeEntries(w io.Writer, l *tl.TransferList) {
	for i, e := range l.Entries() {
		if i > 0 {
			_, _ = fmt.Fprintln(w, "----")
		}
		if name := tl.TagName(e.ID()); name != "" {
			_, _ = fmt.Fprintf(w, "%-10s %#x (%s)\n", "id", e.ID(), name)
		} else {
			_, _ = fmt.Fprintf(w, "%-10s %#x\n", "id", e.ID())
		}
		_, _ = fmt.Fprintf(w, "%-10s %#x\n", "hdr_size", tl.EntryHeaderSize)
		_, _ = fmt.Fprintf(w, "%-10s %#x\n", "data_size", e.DataSize())
		_, _ = fmt.Fprintf(w, "%-10s %#x\n", "offset", e.Offset())
	}
}
