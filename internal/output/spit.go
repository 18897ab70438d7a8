// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v2"

	"github.com/staranto/itemctl/internal/attrs"
	"github.com/staranto/itemctl/internal/filters"
)

// Formats accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatRaw  = "raw"
)

// Formats lists every accepted --output value.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatRaw}

// Options are the result-shaping flags of a command.
type Options struct {
	Format string
	Filter string
	Sort   string
	Titles bool
	Color  bool
	Writer io.Writer
}

// SliceDiceSpit marshals results to a JSON document and runs it through
// filter, transform, sort and render. results may be a slice (one row per
// element) or a single value (one row).
func SliceDiceSpit(results any, list attrs.AttrList, opts Options) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	raw, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	if opts.Format == FormatRaw {
		_, err := fmt.Fprintln(w, string(raw))
		return err
	}

	doc := gjson.ParseBytes(raw)
	single := !doc.IsArray()
	if doc.Type == gjson.Null {
		doc, single = gjson.Parse("[]"), false
	} else if single {
		doc = gjson.Parse("[" + doc.Raw + "]")
	}

	fs, err := filters.Parse(opts.Filter)
	if err != nil {
		return err
	}

	rows, err := filters.FilterDataset(doc, list, fs)
	if err != nil {
		return err
	}
	log.Debugf("%d of %d rows after filtering", len(rows), len(doc.Array()))

	for _, row := range rows {
		for _, attr := range list {
			if attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	if err := SortDataset(rows, opts.Sort); err != nil {
		return err
	}

	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, ordered(rows, list), single)
	case FormatYAML:
		return writeYAML(w, ordered(rows, list), single)
	case FormatText, "":
		TableWriter(rows, list, opts, w)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", opts.Format)
	}
}

// ordered drops hidden attrs and keeps the --attrs column order.
func ordered(rows []map[string]interface{}, list attrs.AttrList) []yaml.MapSlice {
	out := make([]yaml.MapSlice, 0, len(rows))
	for _, row := range rows {
		ms := make(yaml.MapSlice, 0, len(list))
		for _, attr := range list {
			if !attr.Include {
				continue
			}
			ms = append(ms, yaml.MapItem{Key: attr.OutputKey, Value: row[attr.OutputKey]})
		}
		out = append(out, ms)
	}
	return out
}

func writeYAML(w io.Writer, rows []yaml.MapSlice, single bool) error {
	var v any = rows
	if single && len(rows) == 1 {
		v = rows[0]
	}
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func writeJSON(w io.Writer, rows []yaml.MapSlice, single bool) error {
	docs := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		doc, err := marshalOrdered(row)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	var v any = docs
	if single && len(docs) == 1 {
		v = docs[0]
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// marshalOrdered writes one row as a JSON object with keys in list order.
func marshalOrdered(row yaml.MapSlice) (json.RawMessage, error) {
	buf := []byte{'{'}
	for i, kv := range row {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(fmt.Sprint(kv.Key))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}
