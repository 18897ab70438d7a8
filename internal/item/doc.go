// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package item defines the item record, the stats aggregate, and the error
// kinds shared by the store, service, and transport layers.
package item
