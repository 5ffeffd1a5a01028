package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Every call returns fresh flag state.
func newApp(stdout, stderr io.Writer) *cli.Command {
	g := &globals{}
	return &cli.Command{
		Name:      "tlc",
		Usage:     "Build and inspect firmware handoff transfer lists",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     g.flags(),
		Before:    g.before,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			createCmd(g),
			addCmd(),
			removeCmd(),
			infoCmd(),
			unpackCmd(),
			validateCmd(),
			genHeaderCmd(),
			serveCmd(g),
			versionCmd(),
		},
	}
}
