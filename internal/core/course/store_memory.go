// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package course

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
)

// # In-Memory Implementations
//
// Used by local development without Postgres or Redis and by handler tests.

// MemoryCourseRepository implements [CourseRepository] in process.
type MemoryCourseRepository struct {
	mu      sync.RWMutex
	courses map[string]*Course
}

// NewMemoryCourseRepository creates an empty [MemoryCourseRepository].
func NewMemoryCourseRepository() *MemoryCourseRepository {
	return &MemoryCourseRepository{courses: make(map[string]*Course)}
}

// FindByID implements [CourseRepository].
func (repository *MemoryCourseRepository) FindByID(_ context.Context, id string) (*Course, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	course, ok := repository.courses[id]
	if !ok {
		return nil, apperr.NotFound(courseResource)
	}
	return course.clone(), nil
}

// FindTrimmedByID implements [CourseRepository].
func (repository *MemoryCourseRepository) FindTrimmedByID(context context.Context, id string) (*Course, error) {
	course, err := repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	return course.Trimmed(), nil
}

// ListTrimmed implements [CourseRepository].
func (repository *MemoryCourseRepository) ListTrimmed(_ context.Context) ([]Course, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	courses := make([]Course, 0, len(repository.courses))
	for _, course := range repository.courses {
		courses = append(courses, *course.Trimmed())
	}
	slices.SortFunc(courses, func(a, b Course) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return courses, nil
}

// Create implements [CourseRepository].
func (repository *MemoryCourseRepository) Create(_ context.Context, course *Course) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.courses[course.ID]; ok {
		return apperr.Conflict("Course already exists")
	}

	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	repository.courses[course.ID] = course.clone()
	return nil
}

// Update implements [CourseRepository].
func (repository *MemoryCourseRepository) Update(_ context.Context, course *Course) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.courses[course.ID]
	if !ok {
		return apperr.NotFound(courseResource)
	}

	course.CreatedAt = stored.CreatedAt
	course.UpdatedAt = time.Now().UTC()
	repository.courses[course.ID] = course.clone()
	return nil
}

// MemoryCourseCache implements [CourseCache] with JSON payloads, so reads
// decode exactly what Redis would return.
type MemoryCourseCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryCourseCache creates an empty [MemoryCourseCache].
func NewMemoryCourseCache() *MemoryCourseCache {
	return &MemoryCourseCache{entries: make(map[string][]byte)}
}

// Get implements [CourseCache].
func (cache *MemoryCourseCache) Get(_ context.Context, key string, target any) error {
	cache.mu.RLock()
	payload, ok := cache.entries[key]
	cache.mu.RUnlock()

	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("memory_course_decode_failed: %w", err)
	}
	return nil
}

// Set implements [CourseCache].
func (cache *MemoryCourseCache) Set(_ context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("memory_course_encode_failed: %w", err)
	}

	cache.mu.Lock()
	cache.entries[key] = payload
	cache.mu.Unlock()
	return nil
}

// Flush drops every entry.
func (cache *MemoryCourseCache) Flush() {
	cache.mu.Lock()
	clear(cache.entries)
	cache.mu.Unlock()
}
