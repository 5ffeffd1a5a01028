package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tlc/pkg/tl"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check that a file holds a well-formed transfer list",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := fileArg(cmd, "FILE")
			if err != nil {
				return err
			}
			buf, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			l, err := tl.Parse(buf)
			if err != nil {
				return fmt.Errorf("%s: invalid transfer list: %w", path, err)
			}
			_, err = fmt.Fprintf(cmd.Root().Writer, "%s: valid (version %d, %d entries, size %#x of %#x)\n",
				path, l.Version(), l.Len(), l.Size(), l.MaxSize())
			return err
		},
	}
}
