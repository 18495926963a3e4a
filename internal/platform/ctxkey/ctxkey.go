// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

// Package ctxkey holds the request-scoped context keys. Only ctxutil reads
// and writes them.
package ctxkey

type key uint8

const (
	// KeyRequestID carries the X-Request-ID correlation value.
	KeyRequestID key = iota + 1

	// KeyUser carries the session snapshot attached by the access gate.
	KeyUser

	// KeyLogger carries the request logger.
	KeyLogger
)
