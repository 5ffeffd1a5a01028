package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tlc/internal/logger"
	"github.com/samcharles93/tlc/pkg/tl"
)

// globals holds the root flags and the config they were merged with.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
	debug      bool
	cfg        Config
}

func (g *globals) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Sources:     cli.EnvVars("TLC_CONFIG"),
			Destination: &g.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &g.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &g.logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &g.debug,
		},
	}
}

// before loads the config file and installs the logger in ctx.
func (g *globals) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(g.configPath)
	if err != nil {
		return ctx, err
	}
	g.cfg = cfg
	if cfg.LogLevel != "" && !cmd.IsSet("log-level") {
		g.logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !cmd.IsSet("log-format") {
		g.logFormat = cfg.LogFormat
	}
	level := g.logLevel
	if g.debug {
		level = "debug"
	}
	log, err := logger.Setup(cmd.Root().ErrWriter, g.logFormat, level)
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx, log), nil
}

// entryFlags are shared by create and add.
type entryFlags struct {
	fdt      string
	entries  []string
	fromYAML string
	align    int
}

func (f *entryFlags) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "fdt",
			Usage:       "add a flattened device tree blob",
			Destination: &f.fdt,
		},
		&cli.StringSliceFlag{
			Name:        "entry",
			Aliases:     []string{"e"},
			Usage:       "add a blob as TAG:PATH (TAG is a number or a tag name), repeatable",
			Destination: &f.entries,
		},
		&cli.StringFlag{
			Name:        "from-yaml",
			Aliases:     []string{"y"},
			Usage:       "add the entries described by a YAML file",
			Destination: &f.fromYAML,
		},
		&cli.IntFlag{
			Name:        "align",
			Aliases:     []string{"a"},
			Usage:       "alignment (log2 bytes) for --fdt and --entry blobs",
			Destination: &f.align,
		},
	}
}

type blobSpec struct {
	tag  uint32
	path string
}

// parseEntry splits a TAG:PATH argument.
func parseEntry(s string) (blobSpec, error) {
	tag, path, ok := strings.Cut(s, ":")
	if !ok || path == "" {
		return blobSpec{}, fmt.Errorf("invalid entry %q: want TAG:PATH", s)
	}
	id, err := tl.ResolveTag(tag)
	if err != nil {
		return blobSpec{}, fmt.Errorf("invalid entry %q: %w", s, err)
	}
	return blobSpec{tag: id, path: path}, nil
}

// parseUint32 accepts decimal, 0x hex, 0o octal and 0b binary.
func parseUint32(name, s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", name, s, err)
	}
	return uint32(v), nil
}

func parseAlign(a int) (uint8, error) {
	if a < 0 || a > int(tl.MaxAlignment) {
		return 0, fmt.Errorf("invalid --align %d: %w", a, tl.ErrAlignmentRange)
	}
	return uint8(a), nil
}
