// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package course

import (
	"context"
	"errors"
)

//go:generate mockgen -source=store.go -destination=mocks/store_mocks.go -package=mocks

// ErrCacheMiss is returned by a [CourseCache] when the key is absent.
var ErrCacheMiss = errors.New("course: cache miss")

// # Course Data Access

// CourseRepository defines the data access contract for courses.
//
// A missing course is reported as an [apperr.KindNotFound] error.
type CourseRepository interface {

	/*
		FindByID returns the full course, lesson content included.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Course: Hydrated entity
		  - error: NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Course, error)

	/*
		FindTrimmedByID returns the public projection of a course.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Course: Entity without enrolled-only lesson fields
		  - error: NotFound or database retrieval failures
	*/
	FindTrimmedByID(context context.Context, id string) (*Course, error)

	/*
		ListTrimmed returns the public projection of every course, oldest first.

		Parameters:
		  - context: context.Context

		Returns:
		  - []Course: Possibly empty, never nil
		  - error: Database retrieval failures
	*/
	ListTrimmed(context context.Context) ([]Course, error)

	// Create persists a new course.
	Create(context context.Context, course *Course) error

	/*
		Update persists every mutable field of the course.

		Parameters:
		  - context: context.Context
		  - course: *Course

		Returns:
		  - error: NotFound or persistence failures
	*/
	Update(context context.Context, course *Course) error
}

// # Read-Path Cache

// CourseCache stores JSON documents without expiry.
type CourseCache interface {

	/*
		Get decodes the document under key into target.

		Parameters:
		  - context: context.Context
		  - key: string
		  - target: any (pointer)

		Returns:
		  - error: ErrCacheMiss, decoding or cache failures
	*/
	Get(context context.Context, key string, target any) error

	// Set encodes value and stores it under key.
	Set(context context.Context, key string, value any) error
}
