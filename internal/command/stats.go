// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/itemctl/internal/attrs"
	"github.com/staranto/itemctl/internal/item"
	"github.com/staranto/itemctl/internal/meta"
	"github.com/staranto/itemctl/internal/service"
)

func statsAttrs() attrs.AttrList {
	return attrs.AttrList{
		{Key: "total", OutputKey: "total", Include: true},
		{Key: "averagePrice", OutputKey: "averagePrice", Include: true},
	}
}

func StatsCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &ItemActionRunner[item.Stats]{
		CommandName:  "stats",
		SchemaType:   reflect.TypeOf(item.Stats{}),
		DefaultAttrs: statsAttrs,
		FetchFn: func(ctx context.Context, _ *cli.Command, svc *service.Service) (item.Stats, error) {
			return svc.Stats(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

func StatsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ItemCommandBuilder{
		Name:      "stats",
		Usage:     "show the item count and average price",
		UsageText: "itemctl stats [options]",
		Meta:      meta,
		Action:    StatsCommandAction,
	}).Build()
}
