// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/itemctl/internal/output"
	"github.com/staranto/itemctl/internal/store"
)

// GlobalFlagsValidator checks flag combinations that single-flag validators
// can't see.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.Bool("schema") && c.Bool("tldr") {
		return errors.New("--schema and --tldr can't be combined")
	}
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

// NonNegativeValidator accepts an int that is zero or more.
func NonNegativeValidator(value any) error {
	if n, ok := value.(int); !ok || n < 0 {
		return errors.New("must be a non-negative integer")
	}
	return nil
}

// StoreValidator rejects empty specs and malformed s3 urls.
func StoreValidator(value any) error {
	spec := value.(string)
	if spec == "" {
		return errors.New("must not be empty")
	}
	if strings.HasPrefix(spec, "s3://") {
		if _, _, err := store.ParseS3URL(spec); err != nil {
			return err
		}
	}
	return nil
}

// ParseID parses the positional item id.
func ParseID(cmd *cli.Command) (int64, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return 0, errors.New("missing item id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", raw)
	}
	return id, nil
}
