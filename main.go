// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/itemctl/internal/command"
	"github.com/staranto/itemctl/internal/config"
	mylog "github.com/staranto/itemctl/internal/log"
	"github.com/staranto/itemctl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	args := os.Args

	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "No command specified.")
		args = append(args, "--help")
	} else {
		args = mangleArguments(args)
	}

	// Short-circuit --version/-v.
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return 0
		}
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	return 0
}

// mangleArguments expands an @set argument into the flags listed under
// <command>.<set> in the config file. Without an @set, <command>.defaults is
// used when it exists.
func mangleArguments(args []string) []string {
	// We know the first two args are going to be the executable and command.
	preamble := make([]string, 2)
	copy(preamble, args[:2])

	// Short-circuit for --help/-h. If help is requested, just keep the preamble
	// and add --help flag.
	for _, a := range args {
		if a == "--help" || a == "-h" {
			return append(preamble, "--help")
		}
	}

	// The command itself may be the flag, e.g. itemctl --version.
	if strings.HasPrefix(args[1], "-") {
		return args
	}

	rest := args[2:]
	set := "defaults"

	// See if there is a @set specified. If so, it is removed from args and
	// its flags are inserted right after the command.
	for i, a := range rest {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			set = a[1:]
			rest = append(rest[:i:i], rest[i+1:]...)
			break
		}
	}

	setArgs, err := config.GetStringSlice(args[1] + "." + set)
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		log.WithError(err).Warnf("ignoring set %s for %s", set, args[1])
	}

	result := preamble
	for _, arg := range setArgs {
		result = append(result, strings.Fields(arg)...)
	}
	result = append(result, rest...)

	log.Debugf("set=%s, args=%v", set, result)
	return result
}
