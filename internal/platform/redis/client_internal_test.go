// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestOptions_PoolDefaults fills an empty pool config.
*/
func TestOptions_PoolDefaults(t *testing.T) {
	opts, err := options("redis://localhost:6379/1", PoolConfig{})
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)
	assert.Equal(t, 10, opts.PoolSize)
	assert.Equal(t, 2, opts.MinIdleConns)
	assert.Equal(t, 5, opts.MaxIdleConns)
	assert.Equal(t, ioTimeout, opts.ReadTimeout)
}

/*
TestOptions_PoolClamp keeps idle connections within the pool.
*/
func TestOptions_PoolClamp(t *testing.T) {
	opts, err := options("redis://localhost:6379", PoolConfig{Size: 1, MinIdle: 4})
	require.NoError(t, err)

	assert.Equal(t, 1, opts.PoolSize)
	assert.Equal(t, 1, opts.MinIdleConns)
}

/*
TestOptions_InvalidURL rejects non-redis schemes.
*/
func TestOptions_InvalidURL(t *testing.T) {
	_, err := options("http://localhost:6379", PoolConfig{})
	assert.ErrorContains(t, err, "redis: invalid URL")
}
