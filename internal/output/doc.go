// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output shapes command results: it filters, transforms, sorts and
// renders them as a text table, JSON, YAML, or the raw document.
package output
