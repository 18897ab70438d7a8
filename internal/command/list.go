// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/itemctl/internal/item"
	"github.com/staranto/itemctl/internal/meta"
	"github.com/staranto/itemctl/internal/service"
)

// ListCommandAction is the action handler for the "list" subcommand. It
// prints the items whose name contains --query, only the first --limit of
// them when that is set.
func ListCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &ItemActionRunner[[]item.Item]{
		CommandName: "list",
		SchemaType:  reflect.TypeOf(item.Item{}),
		FetchFn: func(ctx context.Context, cmd *cli.Command, svc *service.Service) ([]item.Item, error) {
			q := service.Query{Q: cmd.String("query")}
			if cmd.IsSet("limit") {
				n := cmd.Int("limit")
				q.Limit = &n
			}
			return svc.List(ctx, q)
		},
	}
	return runner.Run(ctx, cmd)
}

// ListCommandBuilder constructs the cli.Command for "list".
func ListCommandBuilder(meta meta.Meta) *cli.Command {
	cfgPath := meta.Config.Source
	return (&ItemCommandBuilder{
		Name:      "list",
		Usage:     "list items",
		UsageText: "itemctl list [options]",
		Meta:      meta,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "only items whose name contains this, ignoring case",
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "show at most this many items",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("list.limit", altsrc.StringSourcer(cfgPath)),
				),
				Validator: func(value int) error {
					return FlagValidators(value, NonNegativeValidator)
				},
			},
		},
		Action: ListCommandAction,
	}).Build()
}
