// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package log

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestHandleLog(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)

	e := &log.Entry{
		Level:     log.InfoLevel,
		Message:   "item created",
		Timestamp: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		Fields:    log.Fields{"name": "Lamp", "id": 3},
	}
	assert.NoError(t, h.HandleLog(e))
	assert.Equal(t, "2025-03-04 05:06:07 I item created id=3 name=Lamp\n", buf.String())
}

func TestHandleLog_NoFields(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf)

	assert.NoError(t, h.HandleLog(&log.Entry{
		Level:     log.ErrorLevel,
		Message:   "boom",
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	assert.Equal(t, "2025-01-01 00:00:00 E boom\n", buf.String())
}

func TestInitLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		fallback []string
		want     log.Level
	}{
		{"default", "", nil, log.ErrorLevel},
		{"fallback", "", []string{"info"}, log.InfoLevel},
		{"env wins", "debug", []string{"info"}, log.DebugLevel},
		{"garbage", "chatty", nil, log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvVar, tt.env)
			InitLogger(tt.fallback...)

			logger, ok := log.Log.(*log.Logger)
			if assert.True(t, ok) {
				assert.Equal(t, tt.want, logger.Level)
			}
		})
	}
}

func TestHandleLog_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := &log.Logger{Handler: NewHandler(&buf), Level: log.DebugLevel}

	logger.WithError(errors.New("disk full")).Error("commit failed")
	assert.Contains(t, buf.String(), "E commit failed error=disk full")
}
