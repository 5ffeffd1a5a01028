package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tlc/internal/logger"
	"github.com/samcharles93/tlc/pkg/tl"
)

func removeCmd() *cli.Command {
	var tags []string

	return &cli.Command{
		Name:      "remove",
		Usage:     "Remove every entry carrying the given tags",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "tags",
				Aliases:     []string{"t"},
				Usage:       "tag ids or names to remove, repeatable",
				Required:    true,
				Destination: &tags,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			path, err := fileArg(cmd, "FILE")
			if err != nil {
				return err
			}
			ids := make([]uint32, 0, len(tags))
			for _, s := range tags {
				id, err := tl.ResolveTag(s)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			l, err := tl.Open(path)
			if err != nil {
				return err
			}
			for _, id := range ids {
				n := l.RemoveTag(id)
				log.Debug("removed tag", "tag", id, "count", n)
			}
			if err := l.WriteFile(path); err != nil {
				return err
			}
			log.Info("updated transfer list", "path", path, "entries", l.Len(), "size", l.Size())
			return nil
		},
	}
}
