// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"testing"

	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
)

func TestS3OptionsFromEnv(t *testing.T) {
	t.Setenv("ITEMCTL_S3_ENDPOINT", "")
	assert.Empty(t, S3OptionsFromEnv())

	t.Setenv("ITEMCTL_S3_ENDPOINT", "http://localhost:9000")
	fns := S3OptionsFromEnv()
	assert.Len(t, fns, 1)

	var o s3v2.Options
	for _, fn := range fns {
		fn(&o)
	}
	assert.Equal(t, "http://localhost:9000", *o.BaseEndpoint)
	assert.True(t, o.UsePathStyle)
}
