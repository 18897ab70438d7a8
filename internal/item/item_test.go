// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package item

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	laptop := Item{ID: 1, Name: "Laptop Pro"}

	tests := []struct {
		name string
		q    string
		want bool
	}{
		{name: "empty query", q: "", want: true},
		{name: "lower case prefix", q: "lap", want: true},
		{name: "upper case", q: "PRO", want: true},
		{name: "inner substring", q: "top p", want: true},
		{name: "no match", q: "chair", want: false},
		{name: "not fuzzy", q: "lpt", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, laptop.Matches(tt.q))
		})
	}
}

func TestInputWith(t *testing.T) {
	in := Input{Name: "Standing Desk", Category: "Furniture", Price: 1199}
	got := in.With(2)
	assert.Equal(t, Item{ID: 2, Name: "Standing Desk", Category: "Furniture", Price: 1199}, got)
}

func TestIndexOfAndMaxID(t *testing.T) {
	items := []Item{{ID: 4}, {ID: 9}, {ID: 2}}

	assert.Equal(t, 1, IndexOf(items, 9))
	assert.Equal(t, -1, IndexOf(items, 7))
	assert.Equal(t, int64(9), MaxID(items))
	assert.Equal(t, int64(0), MaxID(nil))
}

func TestClone(t *testing.T) {
	items := []Item{{ID: 1, Name: "a"}}
	c := Clone(items)
	c[0].Name = "b"
	assert.Equal(t, "a", items[0].Name)
}
