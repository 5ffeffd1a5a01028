package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tlc/internal/logger"
	"github.com/samcharles93/tlc/pkg/tl"
)

func unpackCmd() *cli.Command {
	var dir string

	return &cli.Command{
		Name:      "unpack",
		Usage:     "Write the payload of every entry to te_<index>_<tag>.bin",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "directory",
				Aliases:     []string{"C"},
				Usage:       "output directory",
				Value:       ".",
				Destination: &dir,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			path, err := fileArg(cmd, "FILE")
			if err != nil {
				return err
			}
			l, err := tl.Open(path)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			for i, e := range l.Entries() {
				out := filepath.Join(dir, unpackName(i, e.ID()))
				if err := os.WriteFile(out, e.Data(), 0o644); err != nil {
					return err
				}
				log.Debug("unpacked entry", "tag", e.ID(), "path", out, "bytes", e.DataSize())
			}
			log.Info("unpacked transfer list", "path", path, "entries", l.Len(), "dir", dir)
			return nil
		},
	}
}

func unpackName(index int, tag uint32) string {
	return fmt.Sprintf("te_%d_%d.bin", index, tag)
}
