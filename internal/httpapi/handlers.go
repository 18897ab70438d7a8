// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/apex/log"

	"github.com/staranto/itemctl/internal/item"
	"github.com/staranto/itemctl/internal/service"
)

const maxBodyBytes = 1 << 20

// errBadRequest marks client input the handlers refuse before reaching the
// service.
var errBadRequest = errors.New("bad request")

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	items, err := s.svc.List(ctx, q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	it, err := s.svc.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	created, err := s.svc.Create(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := decodeInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	updated, err := s.svc.Update(ctx, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ctx, cancel := s.withTimeout(r)
	defer cancel()

	removed, err := s.svc.Delete(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removed)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r)
	defer cancel()

	agg, err := s.svc.Stats(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "Route Not Found"})
}

func (s *Server) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
}

// parseQuery reads q and limit. A limit must be a non-negative integer when
// present. Clients may also send page; it is ignored.
func parseQuery(r *http.Request) (service.Query, error) {
	values := r.URL.Query()
	q := service.Query{Q: values.Get("q")}

	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return service.Query{}, fmt.Errorf("%w: limit must be a non-negative integer", errBadRequest)
		}
		q.Limit = &n
	}
	return q, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid item id %q", errBadRequest, r.PathValue("id"))
	}
	return id, nil
}

// decodeInput reads the client fields. An empty body is an empty object;
// anything else that is not a JSON object is refused. Fields are not
// validated.
func decodeInput(w http.ResponseWriter, r *http.Request) (item.Input, error) {
	var in item.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return item.Input{}, nil
		}
		return item.Input{}, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return in, nil
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps an error kind to its status and writes the error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := err.Error()

	switch {
	case errors.Is(err, item.ErrNotFound):
		status, msg = http.StatusNotFound, "Item not found"
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	entry := log.WithFields(log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Debug("request refused")
	}

	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("write response")
	}
}
