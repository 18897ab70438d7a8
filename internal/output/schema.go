// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
)

// Tag is one attribute discovered on a result type, as listed by --schema.
type Tag struct {
	Name string
	Kind string
}

// NewTag builds a Tag from a json struct tag. Fields that are skipped by
// encoding/json yield the zero Tag.
func NewTag(holder string, jsonTag string, kind reflect.Kind) Tag {
	name, _, _ := strings.Cut(jsonTag, ",")
	if name == "" || name == "-" {
		return Tag{}
	}
	if holder != "" {
		name = holder + "." + name
	}
	return Tag{Name: name, Kind: kind.String()}
}

// Print renders the tag into its display form.
func (t Tag) Print() string {
	if t.Name == "" {
		return ""
	}
	return fmt.Sprintf("%-16s %s", t.Name, t.Kind)
}

// SchemaTags walks typ and returns a tag for every json-tagged field, nested
// structs included, sorted by name.
func SchemaTags(holder string, typ reflect.Type) []Tag {
	for typ.Kind() == reflect.Ptr || typ.Kind() == reflect.Slice {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var tags []Tag
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := NewTag(holder, field.Tag.Get("json"), field.Type.Kind())
		if tag.Name == "" {
			continue
		}
		tags = append(tags, tag)

		if field.Type.Kind() == reflect.Struct {
			tags = append(tags, SchemaTags(tag.Name, field.Type)...)
		}
	}

	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

// DumpSchema prints the attributes of typ that --attrs, --filter and --sort
// can name.
func DumpSchema(w io.Writer, typ reflect.Type) {
	tags := SchemaTags("", typ)
	fmt.Fprintf(w, "Schema for %s --\n", typ.Name())
	for _, tag := range tags {
		fmt.Fprintln(w, tag.Print())
	}
}
