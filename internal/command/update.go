// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/itemctl/internal/differ"
	"github.com/staranto/itemctl/internal/item"
	"github.com/staranto/itemctl/internal/meta"
	"github.com/staranto/itemctl/internal/service"
)

// UpdateCommandAction replaces the fields of an item. Fields whose flag is
// not given keep their current value.
func UpdateCommandAction(ctx context.Context, cmd *cli.Command) error {
	// Short circuit --diff mode.
	if cmd.Bool("diff") && !cmd.Bool("tldr") && !cmd.Bool("schema") {
		return updateWithDiff(ctx, cmd)
	}

	runner := &ItemActionRunner[item.Item]{
		CommandName: "update",
		SchemaType:  reflect.TypeOf(item.Item{}),
		FetchFn: func(ctx context.Context, cmd *cli.Command, svc *service.Service) (item.Item, error) {
			_, after, err := update(ctx, cmd, svc)
			return after, err
		},
	}
	return runner.Run(ctx, cmd)
}

// update overlays the given flags onto the record as committed at the moment
// of the write.
func update(ctx context.Context, cmd *cli.Command, svc *service.Service) (before, after item.Item, err error) {
	id, err := ParseID(cmd)
	if err != nil {
		return before, after, err
	}

	before, after, err = svc.Patch(ctx, id, func(cur item.Item) item.Input {
		return inputFromFlags(cmd, item.Input{
			Name:     cur.Name,
			Category: cur.Category,
			Price:    cur.Price,
		})
	})
	return before, after, itemErr(id, err)
}

func updateWithDiff(ctx context.Context, cmd *cli.Command) error {
	svc, err := OpenService(ctx, cmd, nil)
	if err != nil {
		return err
	}

	before, after, err := update(ctx, cmd, svc)
	if err != nil {
		return err
	}

	changed, err := differ.Diff(cmd.Root().Writer, before, after, cmd.Bool("color"))
	if err != nil {
		return err
	}
	if !changed {
		log.Infof("item %d unchanged", after.ID)
	}
	return nil
}

func UpdateCommandBuilder(meta meta.Meta) *cli.Command {
	flags := append(NewItemFieldFlags(), &cli.BoolFlag{
		Name:  "diff",
		Usage: "print a diff of the item before and after the update",
	})

	return (&ItemCommandBuilder{
		Name:      "update",
		Usage:     "change an item",
		UsageText: "itemctl update [options] <id>",
		ArgsUsage: "<id>",
		Meta:      meta,
		Flags:     flags,
		Action:    UpdateCommandAction,
	}).Build()
}
