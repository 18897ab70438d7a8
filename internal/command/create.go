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

// CreateCommandAction adds an item built from --name, --category and --price
// and prints it with its newly assigned id.
func CreateCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &ItemActionRunner[item.Item]{
		CommandName: "create",
		SchemaType:  reflect.TypeOf(item.Item{}),
		FetchFn: func(ctx context.Context, cmd *cli.Command, svc *service.Service) (item.Item, error) {
			return svc.Create(ctx, inputFromFlags(cmd, item.Input{}))
		},
	}
	return runner.Run(ctx, cmd)
}

func CreateCommandBuilder(meta meta.Meta) *cli.Command {
	return (&ItemCommandBuilder{
		Name:      "create",
		Usage:     "add an item",
		UsageText: "itemctl create [options]",
		Meta:      meta,
		Flags:     NewItemFieldFlags(),
		Action:    CreateCommandAction,
	}).Build()
}

// inputFromFlags overlays the item field flags that were given onto base.
func inputFromFlags(cmd *cli.Command, base item.Input) item.Input {
	if cmd.IsSet("name") {
		base.Name = cmd.String("name")
	}
	if cmd.IsSet("category") {
		base.Category = cmd.String("category")
	}
	if cmd.IsSet("price") {
		base.Price = cmd.Float("price")
	}
	return base
}
