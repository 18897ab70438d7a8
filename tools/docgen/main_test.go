// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"strings"
	"testing"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

func TestBuildTLDR(t *testing.T) {
	got := buildTLDR("get", "show one item", [][2]string{{"itemctl get  7", "show item 7"}})
	want := "# itemctl-get\n\n> Show one item.\n> More information: https://github.com/staranto/itemctl.\n\n- Show item 7:\n\n`itemctl get 7`\n"
	assert.Equal(t, want, got)

	fallback := buildTLDR("stats", "", nil)
	assert.Contains(t, fallback, "`itemctl stats --help`")
}

func TestBuildMarkdown(t *testing.T) {
	cmd := &cli.Command{
		Name:      "get",
		Usage:     "show one item",
		UsageText: "itemctl get [options] <id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "store", Aliases: []string{"S"}, Usage: "record store"},
			&cli.BoolFlag{Name: "secret", Hidden: true},
		},
	}

	md := buildMarkdown(cmd, [][2]string{{"itemctl get 7", "show item 7"}})
	assert.True(t, strings.HasPrefix(md, "% ITEMCTL-GET 1\n"))
	assert.Contains(t, md, "itemctl-get - show one item")
	assert.Contains(t, md, "**--store, -S**\n: record store")
	assert.NotContains(t, md, "secret")
	assert.Contains(t, md, "    itemctl get 7")

	man := string(md2man.Render([]byte(md)))
	assert.Contains(t, man, ".TH")
}
