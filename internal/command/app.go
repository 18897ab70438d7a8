// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/itemctl/internal/config"
	"github.com/staranto/itemctl/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	// The arg[1] immediately following the binary (arg[0]) is the itemctl
	// subcommand and also represents the namespace key to be used when
	// retrieving config values. arg[1] could be -h/--help, so ignore it if it
	// appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load(ns)
	if err != nil {
		log.Debugf("no config: %v", err)
	}

	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "itemctl",
		Usage: "Item Control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "itemctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		ListCommandBuilder(meta),
		GetCommandBuilder(meta),
		CreateCommandBuilder(meta),
		UpdateCommandBuilder(meta),
		DeleteCommandBuilder(meta),
		StatsCommandBuilder(meta),
		ServeCommandBuilder(meta),
		CompletionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
