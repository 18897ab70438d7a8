// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/itemctl/internal/item"
	"github.com/staranto/itemctl/internal/meta"
	"github.com/staranto/itemctl/internal/service"
)

func GetCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &ItemActionRunner[item.Item]{
		CommandName: "get",
		SchemaType:  reflect.TypeOf(item.Item{}),
		FetchFn: func(ctx context.Context, cmd *cli.Command, svc *service.Service) (item.Item, error) {
			id, err := ParseID(cmd)
			if err != nil {
				return item.Item{}, err
			}
			it, err := svc.Get(ctx, id)
			return it, itemErr(id, err)
		},
	}
	return runner.Run(ctx, cmd)
}

func GetCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ItemCommandBuilder{
		Name:      "get",
		Usage:     "show one item",
		UsageText: "itemctl get [options] <id>",
		ArgsUsage: "<id>",
		Meta:      meta,
		Action:    GetCommandAction,
	}).Build()
}
