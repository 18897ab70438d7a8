// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultKeys are the item fields shown when --attrs names nothing else.
var DefaultKeys = []string{"id", "name", "category", "price"}

var lengthRe = regexp.MustCompile(`-?\d+`)

// Attr represents each of the keys to be included in the output. These are
// the JSON keys of an item document, thus the name.
type Attr struct {
	// The JSON key to extract from the item document.
	Key string
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool
	// The key to use in the output. This is also the column title when
	// output=text.
	OutputKey string
	// Transformation spec to apply to the output value.
	TransformSpec string
}

// Transform applies the case and length parts of the spec to a string value.
// Any other value is returned unchanged.
func (a *Attr) Transform(value interface{}) interface{} {
	result, ok := value.(string)
	if !ok {
		return value
	}

	// The case transformation that appears last wins. A global spec is
	// prepended to the attr's own, so --attrs '*::U,name::l' lowers name.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same rule for length: the last number overrides a global one.
	match := lengthRe.FindAllString(a.TransformSpec, -1)
	if len(match) == 0 {
		return result
	}

	l, _ := strconv.Atoi(match[len(match)-1])
	abs := l
	if abs < 0 {
		abs = -abs
	}

	runes := []rune(result)
	if abs == 0 || len(runes) <= abs {
		return result
	}

	if l > 0 {
		return string(runes[:l])
	}

	// Middle ellipsis keeps both ends.
	keep := max(abs/2-1, 1)
	return string(runes[:keep]) + ".." + string(runes[len(runes)-keep:])
}

type AttrList []Attr

// Defaults returns a fresh list of the default item columns.
func Defaults() AttrList {
	list := make(AttrList, 0, len(DefaultKeys))
	for _, k := range DefaultKeys {
		list = append(list, Attr{Key: k, Include: true, OutputKey: k})
	}
	return list
}

// Return a string representation of the AttrList. This should match the format
// of the original --attrs flag.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses each spec from the --attrs flag and adds it to the AttrList.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

	// Each spec is key[:outputKey[:transform]]. The output key defaults to
	// the last dotted segment of the key.
specloop:
	for _, spec := range strings.Split(value, ",") {
		attr := Attr{
			Include: true,
		}

		fields := strings.Split(spec, ":")
		if len(fields) > 3 {
			return fmt.Errorf("invalid attr spec %q: too many fields", spec)
		}

		// A leading ! keeps the attr for filtering and sorting only.
		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		attr.Key = strings.TrimPrefix(attr.Key, ".")

		if attr.Key == "" {
			return fmt.Errorf("invalid attr spec %q: empty key", spec)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 || fields[outputIdx] == "" {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// A key that is already listed (a default, or entered twice) is
		// updated in place so column order stays stable.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec inserts a global transform spec into the front of all
// attrs in the list.
func (alist *AttrList) SetGlobalTransformSpec() error {
	spec := ""

	// Only the first global spec counts.
	for a := range *alist {
		if (*alist)[a].Key == "*" {
			spec = (*alist)[a].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for a := range *alist {
		(*alist)[a].TransformSpec = spec + "," + (*alist)[a].TransformSpec
	}

	return nil
}

func (a *AttrList) Type() string {
	return "list"
}
