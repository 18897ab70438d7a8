// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package stats derives the aggregate served by the stats read path.
package stats

import "github.com/staranto/itemctl/internal/item"

// Build computes the count and mean price of records. An empty set averages
// to 0.
func Build(records []item.Item) item.Stats {
	total := len(records)
	if total == 0 {
		return item.Stats{}
	}

	var sum float64
	for _, r := range records {
		sum += r.Price
	}

	return item.Stats{
		Total:        total,
		AveragePrice: sum / float64(total),
	}
}
