package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tlc/internal/logger"
	"github.com/samcharles93/tlc/pkg/tl"
)

func createCmd(g *globals) *cli.Command {
	var (
		sizeArg  string
		flagsArg string
		ef       entryFlags
	)

	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new transfer list",
		ArgsUsage: "OUT",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "size",
				Aliases:     []string{"s"},
				Usage:       "maximum size of the list in bytes",
				Value:       "0x1000",
				Destination: &sizeArg,
			},
			&cli.StringFlag{
				Name:        "flags",
				Aliases:     []string{"f"},
				Usage:       "header flags (bit 0 enables the checksum)",
				Value:       "0x1",
				Destination: &flagsArg,
			},
		}, ef.flags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			out, err := fileArg(cmd, "OUT")
			if err != nil {
				return err
			}
			maxSize, err := parseUint32("size", sizeArg)
			if err != nil {
				return err
			}
			flags, err := parseUint32("flags", flagsArg)
			if err != nil {
				return err
			}
			doc, err := ef.loadYAML()
			if err != nil {
				return err
			}

			// Explicit flags win over the YAML document, which wins over
			// the config file.
			if !cmd.IsSet("size") {
				switch {
				case doc != nil && doc.MaxSize != nil:
					maxSize = *doc.MaxSize
				case g.cfg.MaxSize != nil:
					maxSize = *g.cfg.MaxSize
				}
			}
			if !cmd.IsSet("flags") {
				switch {
				case doc != nil && doc.HasChecksum != nil:
					flags = doc.Flags()
				case g.cfg.Checksum != nil && !*g.cfg.Checksum:
					flags = 0
				}
			}

			l, err := tl.New(maxSize, tl.WithFlags(flags))
			if err != nil {
				return err
			}
			if err := ef.apply(ctx, l, doc); err != nil {
				return err
			}
			if err := l.WriteFile(out); err != nil {
				return err
			}
			log.Info("created transfer list", "path", out, "entries", l.Len(), "size", l.Size(), "max_size", l.MaxSize())
			return nil
		},
	}
}
