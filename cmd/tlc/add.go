package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tlc/internal/logger"
	"github.com/samcharles93/tlc/pkg/tl"
)

func addCmd() *cli.Command {
	var ef entryFlags

	return &cli.Command{
		Name:      "add",
		Usage:     "Add entries to an existing transfer list in place",
		ArgsUsage: "FILE",
		Flags:     ef.flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			path, err := fileArg(cmd, "FILE")
			if err != nil {
				return err
			}
			doc, err := ef.loadYAML()
			if err != nil {
				return err
			}
			l, err := tl.Open(path)
			if err != nil {
				return err
			}
			before := l.Len()
			if err := ef.apply(ctx, l, doc); err != nil {
				return err
			}
			if err := l.WriteFile(path); err != nil {
				return err
			}
			log.Info("updated transfer list", "path", path, "added", l.Len()-before, "size", l.Size())
			return nil
		},
	}
}
