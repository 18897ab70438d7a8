// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/itemctl/internal/attrs"
)

// DelimEnvVar overrides the "," that separates filter expressions.
const DelimEnvVar = "ITEMCTL_FILTER_DELIM"

// filterRegex splits an expression into key, operator and target. Operators
// are one of = ^ ~ < > @ or /, optionally prefixed with '!'.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter represents a single parsed --filter expression including the key,
// operand, optional negation and target value.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

func (f Filter) String() string {
	neg := ""
	if f.Negate {
		neg = "!"
	}
	return f.Key + neg + f.Operand + f.Target
}

// Parse turns a --filter spec into filters. A malformed expression fails the
// whole spec.
func Parse(spec string) ([]Filter, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	delim := ","
	if d, ok := os.LookupEnv(DelimEnvVar); ok && d != "" {
		delim = d
	}

	var filters []Filter
	for _, expr := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(expr)
		if parts == nil || strings.TrimSpace(parts[1]) == "" {
			return nil, fmt.Errorf("invalid filter: %q", expr)
		}

		op := parts[2]
		negate := strings.HasPrefix(op, "!")
		op = strings.TrimPrefix(op, "!")

		if op == "/" {
			if _, err := regexp.Compile(parts[3]); err != nil {
				return nil, fmt.Errorf("invalid filter regex %q: %w", parts[3], err)
			}
		}

		filters = append(filters, Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  negate,
			Operand: op,
			Target:  parts[3],
		})
	}

	return filters, nil
}

// FilterDataset returns the rows of candidates (a JSON array) that pass every
// filter, projected onto the attrs' output keys. Transforms are left to the
// renderer.
func FilterDataset(candidates gjson.Result, list attrs.AttrList, filters []Filter) ([]map[string]interface{}, error) {
	keys, err := resolveKeys(list, filters)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]interface{}, 0, len(candidates.Array()))
	for _, candidate := range candidates.Array() {
		if !matchAll(candidate, filters, keys) {
			continue
		}

		row := make(map[string]interface{}, len(list))
		for _, attr := range list {
			if attr.Key == "*" {
				continue
			}
			row[attr.OutputKey] = candidate.Get(attr.Key).Value()
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// resolveKeys maps each filter key, which may name an attr by output key or
// JSON key, to the JSON key to read. Item fields not in the list are allowed
// as-is.
func resolveKeys(list attrs.AttrList, filters []Filter) ([]string, error) {
	keys := make([]string, len(filters))
	for i, f := range filters {
		for _, attr := range list {
			if attr.OutputKey == f.Key || attr.Key == f.Key {
				keys[i] = attr.Key
				break
			}
		}
		if keys[i] == "" {
			if !isItemField(f.Key) {
				return nil, fmt.Errorf("filter key not found: %s", f.Key)
			}
			keys[i] = f.Key
		}
	}
	return keys, nil
}

func isItemField(key string) bool {
	for _, k := range attrs.DefaultKeys {
		if k == key {
			return true
		}
	}
	return false
}

func matchAll(candidate gjson.Result, filters []Filter, keys []string) bool {
	for i, f := range filters {
		if !f.Match(candidate.Get(keys[i])) {
			return false
		}
	}
	return true
}

// Match reports whether value passes the filter. A missing value never
// passes.
func (f Filter) Match(value gjson.Result) bool {
	switch value.Type {
	case gjson.Null:
		return false
	case gjson.Number:
		return f.matchNumber(value.Float())
	case gjson.String:
		return f.matchString(value.Str)
	case gjson.True, gjson.False:
		return f.matchString(value.String())
	default:
		if f.Operand == "@" {
			return f.matchContains(value)
		}
		log.Debugf("filter %s: unsupported value %s", f, value.Raw)
		return false
	}
}

// matchContains evaluates '@' against arrays (element equality) and objects
// (key presence).
func (f Filter) matchContains(value gjson.Result) bool {
	found := false
	if value.IsArray() {
		for _, el := range value.Array() {
			if el.String() == f.Target {
				found = true
				break
			}
		}
	} else if value.IsObject() {
		found = value.Get(gjson.Escape(f.Target)).Exists()
	}
	return found != f.Negate
}

// matchNumber compares numerically. A target that is not a number only
// matches a negated filter; the other operands fall back to string rules.
func (f Filter) matchNumber(value float64) bool {
	switch f.Operand {
	case "=", ">", "<":
	default:
		return f.matchString(strconv.FormatFloat(value, 'f', -1, 64))
	}

	tgt, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		log.Debugf("filter %s: non-numeric target", f)
		return f.Negate
	}

	var ok bool
	switch f.Operand {
	case "=":
		ok = value == tgt
	case ">":
		ok = value > tgt
	case "<":
		ok = value < tgt
	}
	return ok != f.Negate
}

func (f Filter) matchString(value string) bool {
	var ok bool
	switch f.Operand {
	case "=":
		ok = value == f.Target
	case "~":
		ok = strings.EqualFold(value, f.Target)
	case "^":
		ok = strings.HasPrefix(value, f.Target)
	case ">":
		ok = value > f.Target
	case "<":
		ok = value < f.Target
	case "@":
		ok = strings.Contains(value, f.Target)
	case "/":
		matched, err := regexp.MatchString(f.Target, value)
		if err != nil {
			log.Error("invalid regex: " + f.Target)
			return false
		}
		ok = matched
	default:
		log.Error("unsupported filtering operand: " + f.Operand)
		return false
	}
	return ok != f.Negate
}
