// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/itemctl/internal/attrs"
	awsx "github.com/staranto/itemctl/internal/aws"
	"github.com/staranto/itemctl/internal/cache"
	"github.com/staranto/itemctl/internal/item"
	"github.com/staranto/itemctl/internal/meta"
	"github.com/staranto/itemctl/internal/output"
	"github.com/staranto/itemctl/internal/service"
	"github.com/staranto/itemctl/internal/store"
)

// ShortCircuitTLDR checks the --tldr flag and, if present, runs
// `tldr itemctl-<subcmd>` and returns true so the caller can exit early.
// Without a tldr client the built-in examples are printed instead.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if !cmd.Bool("tldr") {
		return false
	}

	if pathHas("tldr") {
		c := exec.CommandContext(ctx, "tldr", "itemctl-"+subcmd)
		c.Stdout = cmd.Root().Writer
		c.Stderr = os.Stderr
		if err := c.Run(); err == nil {
			return true
		}
		log.Debugf("tldr has no page for %s", subcmd)
	}

	output.DumpExamples(cmd.Root().Writer, Examples[subcmd])
	return true
}

// DumpSchemaIfRequested prints the attributes of the provided type when
// --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(cmd.Root().Writer, t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList from defaults and the extras in --attrs,
// then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults attrs.AttrList) (attrs.AttrList, error) {
	al := defaults
	if extras := cmd.String("attrs"); extras != "" {
		if err := al.Set(extras); err != nil {
			return nil, err
		}
	}
	if err := al.SetGlobalTransformSpec(); err != nil {
		return nil, err
	}
	return al, nil
}

// Emit passes results through the common output routine using the
// result-shaping flags of cmd.
func Emit(cmd *cli.Command, results any, al attrs.AttrList) error {
	return output.SliceDiceSpit(results, al, output.Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
		Writer: cmd.Root().Writer,
	})
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// OpenStore resolves --store. Relative file paths are anchored to the
// directory itemctl started in.
func OpenStore(ctx context.Context, cmd *cli.Command) (store.Store, error) {
	spec := cmd.String("store")
	if m := GetMeta(cmd); !strings.HasPrefix(spec, "s3://") && !filepath.IsAbs(spec) && m.StartingDir != "" {
		spec = filepath.Join(m.StartingDir, spec)
	}

	var opts []awsx.Option
	if p := cmd.String("aws-profile"); p != "" {
		opts = append(opts, awsx.WithProfile(p))
	}
	if r := cmd.String("aws-region"); r != "" {
		opts = append(opts, awsx.WithRegion(r))
	}

	return store.Open(ctx, spec, opts...)
}

// OpenService opens the store named by --store and puts a service in front
// of it. c may be nil.
func OpenService(ctx context.Context, cmd *cli.Command, c *cache.Cache[item.Stats]) (*service.Service, error) {
	st, err := OpenStore(ctx, cmd)
	if err != nil {
		return nil, err
	}
	log.Debugf("store: %s", st)
	return service.New(st, c), nil
}

// ItemError names the item a not-found failure was about. It unwraps to the
// underlying error so errors.Is still sees item.ErrNotFound.
type ItemError struct {
	ID  int64
	Err error
}

func (e *ItemError) Error() string {
	if errors.Is(e.Err, item.ErrNotFound) {
		return fmt.Sprintf("item %d not found", e.ID)
	}
	return fmt.Sprintf("item %d: %v", e.ID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

func itemErr(id int64, err error) error {
	if err == nil {
		return nil
	}
	return &ItemError{ID: id, Err: err}
}

// ItemCommandBuilder is a helper that constructs a cli.Command for the item
// subcommands using a consistent pattern. The builder wires metadata, adds
// the global flags and sets up validators.
type ItemCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	ArgsUsage string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (icb *ItemCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      icb.Name,
		Usage:     icb.Usage,
		UsageText: icb.UsageText,
		ArgsUsage: icb.ArgsUsage,
		Metadata: map[string]any{
			"meta": icb.Meta,
		},
		Flags: append(icb.Flags, NewGlobalFlags(icb.Name, icb.Meta.Config.Source)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: icb.Action,
	}
}

// ItemActionRunner[T] encapsulates the action pattern shared by the item
// subcommands. It handles the short-circuit flags, attrs, the service and
// output emission, with the work itself provided by FetchFn.
type ItemActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs func() attrs.AttrList
	FetchFn      func(context.Context, *cli.Command, *service.Service) (T, error)
}

// Run executes the action with the provided context and command.
func (iar *ItemActionRunner[T]) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	if len(m.Args) > 1 {
		log.Debugf("Executing action for %v", m.Args[1:])
	}

	if ShortCircuitTLDR(ctx, cmd, iar.CommandName) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, iar.SchemaType) {
		return nil
	}

	defaults := attrs.Defaults()
	if iar.DefaultAttrs != nil {
		defaults = iar.DefaultAttrs()
	}
	al, err := BuildAttrs(cmd, defaults)
	if err != nil {
		return err
	}
	log.Debugf("attrs: %v", al.String())

	svc, err := OpenService(ctx, cmd, nil)
	if err != nil {
		return err
	}

	results, err := iar.FetchFn(ctx, cmd, svc)
	if err != nil {
		return err
	}

	return Emit(cmd, results, al)
}
