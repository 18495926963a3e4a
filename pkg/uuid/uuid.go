// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package uuid provides time-ordered identifiers for users, courses and uploaded images.

Version 7 values sort by creation time, which keeps PostgreSQL B-tree
indexes compact and lets object keys list in upload order.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
//
// It panics only if the OS random source is unavailable.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

// Valid reports whether s parses as a UUID of any version.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
