// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"sort"
	"strings"
)

type sortKey struct {
	name          string
	desc          bool
	caseSensitive bool
}

func parseSortSpec(spec string) ([]sortKey, error) {
	var keys []sortKey
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		k := sortKey{}
		// Modifiers may come in either order: -!name or !-name.
		for len(part) > 0 && (part[0] == '-' || part[0] == '!') {
			if part[0] == '-' {
				k.desc = true
			} else {
				k.caseSensitive = true
			}
			part = part[1:]
		}
		if part == "" {
			return nil, fmt.Errorf("invalid sort spec %q", spec)
		}
		k.name = part
		keys = append(keys, k)
	}
	return keys, nil
}

// SortDataset sorts rows in place by a --sort spec: comma separated keys,
// "-" for descending and "!" for case sensitive. Numbers compare numerically
// and missing values sort first. Rows that tie keep their order.
func SortDataset(rows []map[string]interface{}, spec string) error {
	keys, err := parseSortSpec(spec)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			c := compareValues(rows[i][k.name], rows[j][k.name], k.caseSensitive)
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return nil
}

func compareValues(a, b interface{}, caseSensitive bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	af, aNum := a.(float64)
	bf, bNum := b.(float64)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	if !caseSensitive {
		as, bs = strings.ToLower(as), strings.ToLower(bs)
	}
	return strings.Compare(as, bs)
}
