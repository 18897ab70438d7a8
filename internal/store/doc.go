// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package store owns the durable record set. A Store reads the whole set and
// replaces it whole; it never exposes a partially written set and it never
// locks. Serializing read-modify-write cycles is the caller's job.
package store
