// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJammedFlagValidator(t *testing.T) {
	assert.NoError(t, JammedFlagValidator("laptop"))
	assert.NoError(t, JammedFlagValidator("-5"))
	assert.Error(t, JammedFlagValidator("--output"))
}

func TestOutputValidator(t *testing.T) {
	for _, f := range []string{"text", "json", "yaml", "raw"} {
		assert.NoError(t, OutputValidator(f), f)
	}
	assert.Error(t, OutputValidator("xml"))
	assert.Error(t, OutputValidator(""))
}

func TestNonNegativeValidator(t *testing.T) {
	assert.NoError(t, NonNegativeValidator(0))
	assert.NoError(t, NonNegativeValidator(250))
	assert.Error(t, NonNegativeValidator(-1))
	assert.Error(t, NonNegativeValidator(-3))
	assert.Error(t, NonNegativeValidator("1"))
}

func TestStoreValidator(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{spec: "data/items.json"},
		{spec: "/var/lib/itemctl/items.json"},
		{spec: "s3://bucket/items.json"},
		{spec: "", wantErr: true},
		{spec: "s3://bucket", wantErr: true},
		{spec: "s3:///items.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := StoreValidator(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFlagValidators_StopsAtFirstError(t *testing.T) {
	calls := 0
	count := func(any) error {
		calls++
		return nil
	}

	err := FlagValidators("--bad", count, JammedFlagValidator, count)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
