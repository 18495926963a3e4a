// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

/*
TestRetry_SucceedsAfterFailures keeps trying with a fixed delay.
*/
func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	value, err := retry(context.Background(), time.Millisecond, quiet, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("connection refused")
		}
		return "pool", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "pool", value)
	assert.Equal(t, 3, calls)
}

/*
TestRetry_StopsOnCancel returns once the context is cancelled.
*/
func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := retry(ctx, time.Hour, quiet, func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
