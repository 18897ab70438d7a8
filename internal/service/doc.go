// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package service implements the item operations (list, get, create, update,
// delete) and the stats read path.
//
// Mutations hold a per-service mutex for their whole load, change, and
// replace cycle, so two writers can never lose each other's update. Reads
// don't lock; the store only ever exposes committed sets. The stats cache is
// invalidated after a successful commit and left alone when a commit fails.
package service
