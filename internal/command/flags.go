// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os"
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/itemctl/internal/output"
)

// DefaultStore is used when neither flag, env nor config names a store.
const DefaultStore = "data/items.json"

// Flags carry parse state, so every command gets its own instances.

func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the attributes available to --attrs, --filter and --sort",
		HideDefault: true,
	}
}

func newTLDRFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show quick examples",
		HideDefault: true,
	}
}

// NewStoreFlags returns the flags that locate the record store. ns is the
// command name used as the config namespace; cfgPath is the config file.
func NewStoreFlags(ns, cfgPath string) []cli.Flag {
	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile(ns, cfgPath, &cli.StringFlag{
			Name:    "store",
			Aliases: []string{"S"},
			Usage:   "record store, a file path or s3://bucket/key",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ITEMCTL_STORE"),
			),
			Value: DefaultStore,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, StoreValidator)
			},
		}),
		NameSpacedValueChainFlagFromConfigFile(ns, cfgPath, &cli.StringFlag{
			Name:  "aws-profile",
			Usage: "shared config profile for s3 stores",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ITEMCTL_AWS_PROFILE"),
			),
		}),
		NameSpacedValueChainFlagFromConfigFile(ns, cfgPath, &cli.StringFlag{
			Name:  "aws-region",
			Usage: "region for s3 stores",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ITEMCTL_AWS_REGION"),
			),
		}),
	}
}

// NewGlobalFlags returns the result-shaping flags shared by every command
// that prints items.
func NewGlobalFlags(ns, cfgPath string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"attrs", altsrc.StringSourcer(cfgPath)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(cfgPath)),
				yaml.YAML("color", altsrc.StringSourcer(cfgPath)),
			),
			Value: isTerminal(os.Stdout),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ITEMCTL_OUTPUT"),
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(cfgPath)),
				yaml.YAML("output", altsrc.StringSourcer(cfgPath)),
			),
			Value: output.FormatText,
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"sort", altsrc.StringSourcer(cfgPath)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(cfgPath)),
				yaml.YAML("titles", altsrc.StringSourcer(cfgPath)),
			),
			Value: true,
		},
		newSchemaFlag(),
		newTLDRFlag(),
	}

	return append(flags, NewStoreFlags(ns, cfgPath)...)
}

// NewItemFieldFlags returns --name, --category and --price for create and
// update.
func NewItemFieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "item name",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "category",
			Aliases: []string{"C"},
			Usage:   "item category",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.FloatFlag{
			Name:    "price",
			Aliases: []string{"p"},
			Usage:   "item price",
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas reports whether target is an executable on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
