// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// EnvVar names the variable that overrides the log level.
const EnvVar = "ITEMCTL_LOG"

// InitLogger sets up Apex with a custom handler writing to stderr. The level
// comes from ITEMCTL_LOG, else fallback, else ERROR.
func InitLogger(fallback ...string) {
	level := strings.ToUpper(os.Getenv(EnvVar))
	if level == "" && len(fallback) > 0 {
		level = strings.ToUpper(fallback[0])
	}
	if level == "" {
		level = "ERROR"
	}

	log.SetHandler(NewHandler(os.Stderr))
	if lvl, err := log.ParseLevel(level); err != nil {
		log.SetLevel(log.ErrorLevel)
		log.Warnf("unknown %s level %q, using ERROR", EnvVar, level)
	} else {
		log.SetLevel(lvl)
	}
}

// CustomHandler formats log entries as a single line of
// "timestamp level message key=value ..." and writes them to Writer.
type CustomHandler struct {
	mu     sync.Mutex
	Writer io.Writer
}

// NewHandler returns a handler writing to w.
func NewHandler(w io.Writer) *CustomHandler {
	return &CustomHandler{Writer: w}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %.1s %s", timestamp.Format("2006-01-02 15:04:05"),
		strings.ToUpper(e.Level.String()), e.Message)

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields[name])
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.Writer, b.String())
	return err
}
