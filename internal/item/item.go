// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package item

import (
	"errors"
	"strings"
)

// Sentinel errors for the three failure kinds of the record-keeping core.
// Callers branch on them with errors.Is; every layer wraps with %w so the kind
// survives the trip to the transport or CLI.
var (
	ErrNotFound = errors.New("item not found")
	ErrParse    = errors.New("record set is not valid")
	ErrIO       = errors.New("record store unavailable")
)

// Item is a single stored record. ID is assigned by the service on create and
// never changes afterwards.
type Item struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Input carries the client-supplied fields for create and update. It has no
// ID field, so a client id is never honored.
type Input struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Stats is the aggregate served by the stats read path.
type Stats struct {
	Total        int     `json:"total"`
	AveragePrice float64 `json:"averagePrice"`
}

// With returns a copy of in stamped with id.
func (in Input) With(id int64) Item {
	return Item{
		ID:       id,
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
	}
}

// Matches reports whether the name contains q, ignoring case. An empty q
// matches everything.
func (i Item) Matches(q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(i.Name), strings.ToLower(q))
}

// Clone returns a copy of the slice so callers can't mutate a set that is
// still referenced elsewhere.
func Clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// IndexOf returns the position of the first record with id, or -1.
func IndexOf(items []Item, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// MaxID returns the largest id in the set, or 0 for an empty set.
func MaxID(items []Item) int64 {
	var max int64
	for _, it := range items {
		if it.ID > max {
			max = it.ID
		}
	}
	return max
}
