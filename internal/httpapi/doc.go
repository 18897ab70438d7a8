// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package httpapi exposes the item service over HTTP/JSON.
//
// Routes:
//
//	GET    /api/items?q=&limit=         list, filtered and capped
//	GET    /api/items/{id}              one item
//	POST   /api/items                   create, 201
//	PUT    /api/items/{id}              update, id kept
//	DELETE /api/items/{id}              delete, returns the removed item
//	GET    /api/stats                   {"total":N,"averagePrice":X}
//	GET    /metrics                     Prometheus exposition
//
// Every failure answers with {"error":"message"}. Unknown routes get a 404
// with "Route Not Found".
package httpapi
