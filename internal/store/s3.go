// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/staranto/itemctl/internal/item"
)

// ObjectAPI is the slice of the S3 client the store needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps the record set in a single S3 object. A PutObject replaces
// the object whole, so readers only ever see a committed set.
type S3Store struct {
	client ObjectAPI
	bucket string
	key    string
	sem    chan struct{}
}

// NewS3Store returns a store backed by s3://bucket/key.
func NewS3Store(client ObjectAPI, bucket, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key, sem: make(chan struct{}, 1)}
}

func (s *S3Store) String() string {
	return s3Scheme + s.bucket + "/" + s.key
}

// Lock serializes writers sharing this S3Store. S3 offers no advisory
// locks, so writers in other processes are not excluded.
func (s *S3Store) Lock(ctx context.Context) (func(), error) {
	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("lock %s: %w: %w", s, item.ErrIO, ctx.Err())
	}
}

// Load fetches and decodes the object. A missing object is reported as
// item.ErrIO wrapping fs.ErrNotExist.
func (s *S3Store) Load(ctx context.Context) ([]item.Item, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("get %s: %w: %w", s, item.ErrIO, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("get %s: %w: %w", s, item.ErrIO, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", s, item.ErrIO, err)
	}

	return decode(raw, s.String())
}

// Replace uploads the encoded set as the new object body.
func (s *S3Store) Replace(ctx context.Context, items []item.Item) error {
	data, err := encode(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w: %w", s, item.ErrIO, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w: %w", s, item.ErrIO, err)
	}

	log.Debugf("committed %d records to %s", len(items), s)
	return nil
}
