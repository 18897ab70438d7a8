// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/itemctl/internal/config"
)

const sets = `list:
  defaults:
    - --limit 5
  cheap:
    - --filter price<100
    - --sort price
`

func TestMangleArguments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "itemctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sets), 0o600))
	t.Setenv(config.EnvVar, path)
	_, err := config.Load()
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults set",
			args: []string{"itemctl", "list"},
			want: []string{"itemctl", "list", "--limit", "5"},
		},
		{
			name: "named set replaces defaults",
			args: []string{"itemctl", "list", "@cheap", "-o", "json"},
			want: []string{"itemctl", "list", "--filter", "price<100", "--sort", "price", "-o", "json"},
		},
		{
			name: "set anywhere",
			args: []string{"itemctl", "list", "-o", "json", "@cheap"},
			want: []string{"itemctl", "list", "--filter", "price<100", "--sort", "price", "-o", "json"},
		},
		{
			name: "unknown set",
			args: []string{"itemctl", "list", "@nope"},
			want: []string{"itemctl", "list"},
		},
		{
			name: "no sets for command",
			args: []string{"itemctl", "get", "7"},
			want: []string{"itemctl", "get", "7"},
		},
		{
			name: "help wins",
			args: []string{"itemctl", "list", "@cheap", "-h"},
			want: []string{"itemctl", "list", "--help"},
		},
		{
			name: "leading flag",
			args: []string{"itemctl", "--version"},
			want: []string{"itemctl", "--version"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]string(nil), tt.args...)
			assert.Equal(t, tt.want, mangleArguments(in))
			assert.Equal(t, tt.args, in, "input must not be modified")
		})
	}
}

func TestMangleArguments_MalformedSetIsLogged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "itemctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("list:\n  defaults:\n    limit: 5\n"), 0o600))
	t.Setenv(config.EnvVar, path)
	_, err := config.Load()
	require.NoError(t, err)

	logger, ok := log.Log.(*log.Logger)
	require.True(t, ok)
	prevHandler, prevLevel := logger.Handler, logger.Level
	t.Cleanup(func() {
		log.SetHandler(prevHandler)
		log.SetLevel(prevLevel)
	})

	h := memory.New()
	log.SetHandler(h)
	log.SetLevel(log.WarnLevel)

	assert.Equal(t, []string{"itemctl", "list", "-o", "json"}, mangleArguments([]string{"itemctl", "list", "-o", "json"}))

	require.Len(t, h.Entries, 1)
	assert.Equal(t, log.WarnLevel, h.Entries[0].Level)
	assert.Contains(t, h.Entries[0].Message, "ignoring set defaults for list")
	assert.Contains(t, h.Entries[0].Fields, "error")
}
