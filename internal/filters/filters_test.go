// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/itemctl/internal/attrs"
)

const dataset = `[
  {"id": 1, "name": "Laptop Pro", "category": "Electronics", "price": 2499, "tags": ["work"]},
  {"id": 2, "name": "Noise Cancelling Headphones", "category": "Electronics", "price": 399},
  {"id": 3, "name": "Ergonomic Chair", "category": "Furniture", "price": 799, "tags": ["office", "work"]},
  {"id": 4, "name": "Standing Desk", "category": "Furniture", "price": 1199}
]`

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		delim   string
		want    []Filter
		wantErr bool
	}{
		{name: "empty spec"},
		{name: "blank spec", spec: "  "},
		{
			name: "single exact match",
			spec: "name=Laptop Pro",
			want: []Filter{{Key: "name", Operand: "=", Target: "Laptop Pro"}},
		},
		{
			name: "negated prefix",
			spec: "category!^Elec",
			want: []Filter{{Key: "category", Operand: "^", Target: "Elec", Negate: true}},
		},
		{
			name: "multiple",
			spec: "category=Furniture,price>500",
			want: []Filter{
				{Key: "category", Operand: "=", Target: "Furniture"},
				{Key: "price", Operand: ">", Target: "500"},
			},
		},
		{
			name:  "custom delimiter",
			spec:  "name@,Pro;price<3000",
			delim: ";",
			want: []Filter{
				{Key: "name", Operand: "@", Target: ",Pro"},
				{Key: "price", Operand: "<", Target: "3000"},
			},
		},
		{
			name: "empty target",
			spec: "name=",
			want: []Filter{{Key: "name", Operand: "="}},
		},
		{name: "no operator", spec: "name", wantErr: true},
		{name: "no key", spec: "=x", wantErr: true},
		{name: "bad regex", spec: "name/([", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.delim != "" {
				t.Setenv(DelimEnvVar, tt.delim)
			}

			got, err := Parse(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_String(t *testing.T) {
	assert.Equal(t, "price!>5", Filter{Key: "price", Operand: ">", Target: "5", Negate: true}.String())
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		value string
		want  bool
	}{
		{"string equal", "k=Chair", `"Chair"`, true},
		{"string not equal", "k!=Chair", `"Chair"`, false},
		{"string fold", "k~chair", `"Chair"`, true},
		{"string prefix", "k^Ch", `"Chair"`, true},
		{"string contains", "k@ai", `"Chair"`, true},
		{"string regex", "k/^C.*r$", `"Chair"`, true},
		{"string regex negated", "k!/^D", `"Chair"`, true},
		{"string greater", "k>B", `"Chair"`, true},
		{"string less", "k<B", `"Chair"`, false},
		{"number equal", "k=799", `799`, true},
		{"number equal float", "k=799.0", `799`, true},
		{"number greater", "k>500", `799`, true},
		{"number less", "k<500", `799`, false},
		{"number negated", "k!<500", `799`, true},
		{"number non numeric target", "k>abc", `799`, false},
		{"number prefix falls back to string", "k^79", `799`, true},
		{"bool", "k=true", `true`, true},
		{"null never matches", "k=x", `null`, false},
		{"array contains", "k@work", `["office","work"]`, true},
		{"array not contains", "k!@home", `["office","work"]`, true},
		{"object has key", "k@a", `{"a":1}`, true},
		{"object operator other than contains", "k=a", `{"a":1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, err := Parse(tt.expr)
			require.NoError(t, err)
			require.Len(t, fs, 1)
			assert.Equal(t, tt.want, fs[0].Match(gjson.Parse(tt.value)))
		})
	}
}

func TestFilterDataset(t *testing.T) {
	tests := []struct {
		name    string
		attrs   string
		spec    string
		wantIDs []float64
		wantErr bool
	}{
		{name: "no filters", wantIDs: []float64{1, 2, 3, 4}},
		{name: "by category", spec: "category=Furniture", wantIDs: []float64{3, 4}},
		{name: "numeric range", spec: "price>500,price<2000", wantIDs: []float64{3, 4}},
		{name: "case insensitive", spec: "category~electronics", wantIDs: []float64{1, 2}},
		{name: "by renamed output key", attrs: "category:cat", spec: "cat^Furn", wantIDs: []float64{3, 4}},
		{name: "hidden attr still filters", attrs: "!tags", spec: "tags@work", wantIDs: []float64{1, 3}},
		{name: "item field outside the list", attrs: "!price", spec: "id>3", wantIDs: []float64{4}},
		{name: "unknown key", spec: "color=red", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := attrs.Defaults()
			require.NoError(t, list.Set(tt.attrs))
			filters, err := Parse(tt.spec)
			require.NoError(t, err)

			rows, err := FilterDataset(gjson.Parse(dataset), list, filters)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			ids := make([]float64, 0, len(rows))
			for _, r := range rows {
				ids = append(ids, r["id"].(float64))
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFilterDataset_Projection(t *testing.T) {
	list := attrs.Defaults()
	require.NoError(t, list.Set("name:title,!price,*::u"))

	rows, err := FilterDataset(gjson.Parse(dataset), list, nil)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Laptop Pro", rows[0]["title"])
	assert.Equal(t, 2499.0, rows[0]["price"])
	assert.NotContains(t, rows[0], "name")
	assert.NotContains(t, rows[0], "*")
}

func TestFilterDataset_Empty(t *testing.T) {
	rows, err := FilterDataset(gjson.Parse(`[]`), attrs.Defaults(), nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
