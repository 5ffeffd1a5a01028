package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tlc/internal/logger"
	"github.com/samcharles93/tlc/pkg/tl"
)

var headerTemplate = template.Must(template.New("header").Funcs(template.FuncMap{
	"hex": func(v any) string { return fmt.Sprintf("%#x", v) },
}).Parse(`/*
 * Generated by tlc from {{.Source}}. Do not edit.
 */

#ifndef {{.Guard}}
#define {{.Guard}}

#define TRANSFER_LIST_SIGNATURE		{{hex .Signature}}
#define TRANSFER_LIST_HDR_SIZE		{{hex .HeaderSize}}
#define TRANSFER_LIST_VERSION		{{.Version}}
#define TRANSFER_LIST_ALIGNMENT		{{.Alignment}}
#define TRANSFER_LIST_USED_SIZE		{{hex .Size}}
#define TRANSFER_LIST_MAX_SIZE		{{hex .MaxSize}}
#define TRANSFER_LIST_FLAGS		{{hex .Flags}}
#define TRANSFER_LIST_ENTRY_COUNT	{{.Entries}}
{{- if .HasDTB}}
#define TRANSFER_LIST_DTB_OFFSET	{{.DTBOffset}}
{{- end}}

#endif /* {{.Guard}} */
`))

type headerData struct {
	Source     string
	Guard      string
	Signature  uint32
	HeaderSize uint8
	Version    uint8
	Alignment  uint8
	Size       uint32
	MaxSize    uint32
	Flags      uint32
	Entries    int
	HasDTB     bool
	DTBOffset  uint32
}

func genHeaderCmd() *cli.Command {
	var output string

	return &cli.Command{
		Name:      "gen-header",
		Usage:     "Generate a C header describing a transfer list",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"O"},
				Usage:       "header file to write",
				Value:       "header.h",
				Destination: &output,
			},
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
			h := l.Header()
			data := headerData{
				Source:     filepath.Base(path),
				Guard:      includeGuard(output),
				Signature:  h.Signature,
				HeaderSize: h.HeaderSize,
				Version:    h.Version,
				Alignment:  h.Alignment,
				Size:       h.Size,
				MaxSize:    h.MaxSize,
				Flags:      h.Flags,
				Entries:    l.Len(),
			}
			switch off, err := l.EntryDataOffset(tl.TagFDT); {
			case err == nil:
				data.HasDTB, data.DTBOffset = true, off
			case !errors.Is(err, tl.ErrTagNotFound):
				return err
			}

			var buf bytes.Buffer
			if err := headerTemplate.Execute(&buf, data); err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return err
			}
			logger.FromContext(ctx).Info("wrote C header", "path", output, "dtb", data.HasDTB)
			return nil
		},
	}
}

// includeGuard derives a guard macro from a file name: "out/tl-hdr.h"
// becomes "TL_HDR_H".
func includeGuard(path string) string {
	base := strings.ToUpper(filepath.Base(path))
	var b strings.Builder
	for _, r := range base {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	guard := b.String()
	if guard == "" || (guard[0] >= '0' && guard[0] <= '9') {
		guard = "TL_" + guard
	}
	return guard
}
