// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apex/log"

	awsx "github.com/staranto/itemctl/internal/aws"
	"github.com/staranto/itemctl/internal/item"
)

// Store is the record store contract.
//
// Load fails with item.ErrParse when the content is not a record set and with
// item.ErrIO when it can't be read. A backing object that doesn't exist yet is
// an item.ErrIO that also matches fs.ErrNotExist; deciding that it means "no
// records" is left to the caller.
//
// Replace fails with item.ErrIO and, when it does, the previously committed
// set is still what the next Load returns.
//
// Lock blocks until the caller holds the backing object's write lock, or ctx
// is done. The returned func releases it.
type Store interface {
	Load(ctx context.Context) ([]item.Item, error)
	Replace(ctx context.Context, items []item.Item) error
	Lock(ctx context.Context) (unlock func(), err error)
	String() string
}

const s3Scheme = "s3://"

// Open resolves a store spec. Specs of the form s3://bucket/key select an
// S3Store, anything else is a local file path.
func Open(ctx context.Context, spec string, opts ...awsx.Option) (Store, error) {
	if spec == "" {
		return nil, fmt.Errorf("no store specified")
	}

	if !strings.HasPrefix(spec, s3Scheme) {
		log.Debugf("using file store: %s", spec)
		return NewFileStore(spec), nil
	}

	bucket, key, err := ParseS3URL(spec)
	if err != nil {
		return nil, err
	}

	cfg, err := awsx.LoadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.Debugf("using s3 store: bucket=%s key=%s region=%s", bucket, key, cfg.Region)

	return NewS3Store(awsx.NewS3(cfg, awsx.S3OptionsFromEnv()...), bucket, key), nil
}

// ParseS3URL splits s3://bucket/path/to/key into its bucket and key.
func ParseS3URL(spec string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(spec, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 url: %s", spec)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("s3 store must be s3://bucket/key, got %s", spec)
	}
	return bucket, key, nil
}

// decode parses a record set. A JSON null is an empty set.
func decode(raw []byte, source string) ([]item.Item, error) {
	var items []item.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", source, item.ErrParse, err)
	}
	if items == nil {
		items = []item.Item{}
	}
	return items, nil
}

// encode renders the set the way it is kept on disk: an indented JSON array
// with a trailing newline.
func encode(items []item.Item) ([]byte, error) {
	if items == nil {
		items = []item.Item{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
