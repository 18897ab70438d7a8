// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides the keyed, time-bounded in-memory cache that sits in
// front of expensive derived values such as the stats aggregate.
package cache
