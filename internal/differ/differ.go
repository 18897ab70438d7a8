// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Diff writes an ASCII diff of the JSON forms of before and after. Both must
// marshal to JSON objects. It reports whether anything changed.
func Diff(w io.Writer, before, after any, color bool) (bool, error) {
	left, err := toObject(before)
	if err != nil {
		return false, err
	}
	right, err := toObject(after)
	if err != nil {
		return false, err
	}

	d := gojsondiff.New().CompareObjects(left, right)
	if !d.Modified() {
		log.Debug("no differences")
		return false, nil
	}

	f := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		Coloring: color,
	})
	out, err := f.Format(d)
	if err != nil {
		return true, fmt.Errorf("failed to format diff: %w", err)
	}

	_, err = io.WriteString(w, out)
	return true, err
}

func toObject(v any) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%T is not a JSON object: %w", v, err)
	}
	return obj, nil
}
