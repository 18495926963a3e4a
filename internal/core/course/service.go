// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/platform/ctxutil"
	"github.com/Nikhilrai1/lms/internal/platform/imagehost"
	"github.com/Nikhilrai1/lms/internal/platform/metrics"
	"github.com/Nikhilrai1/lms/internal/users/identity"
	"github.com/Nikhilrai1/lms/pkg/slice"
	"github.com/Nikhilrai1/lms/pkg/uuid"
)

// Cache names reported to metrics.
const (
	cacheSingle = "course"
	cacheList   = "course_list"
)

// # Service Layer

// Service orchestrates the course read path and admin authoring.
type Service struct {
	courses CourseRepository
	cache   CourseCache
	images  imagehost.Host
	metrics *metrics.Metrics

	plain *bluemonday.Policy
	rich  *bluemonday.Policy
}

// NewService constructs a new [Service]. collector may be nil.
func NewService(courses CourseRepository, cache CourseCache, images imagehost.Host, collector *metrics.Metrics) *Service {
	return &Service{
		courses: courses,
		cache:   cache,
		images:  images,
		metrics: collector,
		plain:   bluemonday.StrictPolicy(),
		rich:    bluemonday.UGCPolicy(),
	}
}

// # Read Path

/*
GetSingleCourse returns the public projection of a course.

Description: Cache-aside on course:<id>. A miss is filled from the store and
cached without expiry. Missing courses are never cached.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Course: Trimmed course
  - bool: true when served from the cache
  - error: NotFound or storage failures
*/
func (service *Service) GetSingleCourse(context context.Context, id string) (*Course, bool, error) {
	if !uuid.Valid(id) {
		return nil, false, apperr.NotFound(courseResource)
	}

	key := constants.RedisPrefixCourse + id
	cached := &Course{}
	if service.lookup(context, cacheSingle, key, cached) {
		return cached, true, nil
	}

	course, err := service.courses.FindTrimmedByID(context, id)
	if err != nil {
		return nil, false, fmt.Errorf("course_service_get_single_failed: %w", err)
	}

	service.fill(context, key, course)
	return course, false, nil
}

/*
GetAllCourses returns the public projection of every course.

Description: Cache-aside on course:all, same policy as [Service.GetSingleCourse].

Returns:
  - []Course: Trimmed courses, never nil
  - bool: true when served from the cache
  - error: Storage failures
*/
func (service *Service) GetAllCourses(context context.Context) ([]Course, bool, error) {
	var cached []Course
	if service.lookup(context, cacheList, constants.RedisKeyAllCourses, &cached) {
		return nonNil(cached), true, nil
	}

	courses, err := service.courses.ListTrimmed(context)
	if err != nil {
		return nil, false, fmt.Errorf("course_service_get_all_failed: %w", err)
	}

	courses = nonNil(courses)
	service.fill(context, constants.RedisKeyAllCourses, courses)
	return courses, false, nil
}

// lookup reports a cache hit. Cache failures degrade to a miss.
func (service *Service) lookup(context context.Context, name, key string, target any) bool {
	err := service.cache.Get(context, key, target)
	hit := err == nil
	service.metrics.ObserveCache(name, hit)

	logger := ctxutil.GetLogger(context)
	switch {
	case hit:
		logger.DebugContext(context, "course_cache_hit", slog.String("key", key))
	case errors.Is(err, ErrCacheMiss):
		logger.DebugContext(context, "course_cache_miss", slog.String("key", key))
	default:
		logger.WarnContext(context, "course_cache_read_failed", slog.String("key", key), slog.Any("error", err))
	}
	return hit
}

// fill writes a freshly loaded document. The write is awaited, a failure
// only costs the next reader a store round trip.
func (service *Service) fill(context context.Context, key string, value any) {
	if err := service.cache.Set(context, key, value); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "course_cache_write_failed",
			slog.String("key", key), slog.Any("error", err))
	}
}

/*
GetCourseContent returns the full lesson list of an enrolled course.

Description: Bypasses the cache. Enrollment is read from the session
snapshot attached by the auth gate.

Parameters:
  - context: context.Context
  - user: *identity.User
  - courseID: string

Returns:
  - []Content: Untrimmed lessons
  - error: Forbidden (NOT_ENROLLED), NotFound or storage failures
*/
func (service *Service) GetCourseContent(context context.Context, user *identity.User, courseID string) ([]Content, error) {
	if !user.EnrolledIn(courseID) {
		return nil, apperr.Forbidden(MsgNotEnrolled).WithCode(CodeNotEnrolled)
	}

	course, err := service.courses.FindByID(context, courseID)
	if err != nil {
		return nil, fmt.Errorf("course_service_get_content_failed: %w", err)
	}
	return course.CourseData, nil
}

// # Authoring

// CourseInput carries a new course.
type CourseInput struct {
	Name           string
	Description    string
	Price          float64
	EstimatedPrice *float64
	Thumbnail      string // Optional base64 payload.
	Tags           string
	Level          string
	DemoURL        string
	Benefits       []Title
	Prerequisites  []Title
	CourseData     []Content
}

// CoursePatch carries optional changes. Nil fields are left as stored.
type CoursePatch struct {
	Name           *string
	Description    *string
	Price          *float64
	EstimatedPrice *float64
	Thumbnail      *string
	Tags           *string
	Level          *string
	DemoURL        *string
	Benefits       *[]Title
	Prerequisites  *[]Title
	CourseData     *[]Content
}

/*
CreateCourse persists a new course.

Description: Writes to the store only. Cached lists are left untouched.

Parameters:
  - context: context.Context
  - input: CourseInput

Returns:
  - *Course: The created course
  - error: Validation (bad thumbnail), Upstream (image host) or storage failures
*/
func (service *Service) CreateCourse(context context.Context, input CourseInput) (*Course, error) {
	course := &Course{
		ID:             uuid.New(),
		Name:           service.plain.Sanitize(input.Name),
		Description:    service.rich.Sanitize(input.Description),
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Tags:           service.plain.Sanitize(input.Tags),
		Level:          service.plain.Sanitize(input.Level),
		DemoURL:        strings.TrimSpace(input.DemoURL),
		Benefits:       service.sanitizeTitles(input.Benefits),
		Prerequisites:  service.sanitizeTitles(input.Prerequisites),
		Reviews:        []Review{},
		CourseData:     service.sanitizeContent(input.CourseData),
	}

	if strings.TrimSpace(input.Thumbnail) != "" {
		image, err := service.upload(context, input.Thumbnail)
		if err != nil {
			return nil, err
		}
		course.Thumbnail = &image
	}

	if err := service.courses.Create(context, course); err != nil {
		service.discard(context, course.Thumbnail)
		return nil, fmt.Errorf("course_service_create_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "course_created", slog.String("course_id", course.ID))
	return course, nil
}

/*
EditCourse applies a patch to a stored course.

Description: A thumbnail that is already a hosted URL keeps the stored
image. A new payload is uploaded and the previous image is deleted once the
store references the new one. Cached entries are left untouched.

Parameters:
  - context: context.Context
  - id: string
  - patch: CoursePatch

Returns:
  - *Course: The updated course
  - error: NotFound, Validation, Upstream or storage failures
*/
func (service *Service) EditCourse(context context.Context, id string, patch CoursePatch) (*Course, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound(courseResource)
	}

	course, err := service.courses.FindByID(context, id)
	if err != nil {
		return nil, fmt.Errorf("course_service_edit_lookup_failed: %w", err)
	}

	service.apply(course, patch)

	previous := course.Thumbnail
	replaced := false
	if patch.Thumbnail != nil && isPayload(*patch.Thumbnail) {
		image, err := service.upload(context, *patch.Thumbnail)
		if err != nil {
			return nil, err
		}
		course.Thumbnail = &image
		replaced = true
	}

	if err := service.courses.Update(context, course); err != nil {
		if replaced {
			service.discard(context, course.Thumbnail)
		}
		return nil, fmt.Errorf("course_service_edit_failed: %w", err)
	}

	if replaced {
		service.discard(context, previous)
	}

	ctxutil.GetLogger(context).InfoContext(context, "course_edited", slog.String("course_id", course.ID))
	return course, nil
}

func (service *Service) apply(course *Course, patch CoursePatch) {
	if patch.Name != nil {
		course.Name = service.plain.Sanitize(*patch.Name)
	}
	if patch.Description != nil {
		course.Description = service.rich.Sanitize(*patch.Description)
	}
	if patch.Price != nil {
		course.Price = *patch.Price
	}
	if patch.EstimatedPrice != nil {
		course.EstimatedPrice = patch.EstimatedPrice
	}
	if patch.Tags != nil {
		course.Tags = service.plain.Sanitize(*patch.Tags)
	}
	if patch.Level != nil {
		course.Level = service.plain.Sanitize(*patch.Level)
	}
	if patch.DemoURL != nil {
		course.DemoURL = strings.TrimSpace(*patch.DemoURL)
	}
	if patch.Benefits != nil {
		course.Benefits = service.sanitizeTitles(*patch.Benefits)
	}
	if patch.Prerequisites != nil {
		course.Prerequisites = service.sanitizeTitles(*patch.Prerequisites)
	}
	if patch.CourseData != nil {
		course.CourseData = service.sanitizeContent(*patch.CourseData)
	}
}

// isPayload reports whether a thumbnail value needs uploading. Hosted URLs
// echo the current image back.
func isPayload(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://")
}

func (service *Service) upload(context context.Context, payload string) (imagehost.Image, error) {
	image, err := service.images.Upload(context, constants.FolderCourses, payload)
	if err != nil {
		if errors.Is(err, imagehost.ErrInvalidPayload) {
			return imagehost.Image{}, apperr.ValidationError(MsgInvalidThumbnail).WithCause(err)
		}
		return imagehost.Image{}, apperr.Upstream(MsgThumbnailUploadFail, fmt.Errorf("course_service_thumbnail_upload_failed: %w", err))
	}
	return image, nil
}

// discard deletes a hosted image. Failures leave an orphan and are logged.
func (service *Service) discard(context context.Context, image *imagehost.Image) {
	if image == nil || image.PublicID == "" {
		return
	}
	if err := service.images.Delete(context, image.PublicID); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "thumbnail_cleanup_failed",
			slog.String("public_id", image.PublicID), slog.Any("error", err))
	}
}

func (service *Service) sanitizeTitles(titles []Title) []Title {
	return slice.Map(titles, func(title Title) Title {
		return Title{Title: service.plain.Sanitize(title.Title)}
	})
}

func (service *Service) sanitizeContent(lessons []Content) []Content {
	return slice.Map(lessons, func(lesson Content) Content {
		lesson.Title = service.plain.Sanitize(lesson.Title)
		lesson.Description = service.rich.Sanitize(lesson.Description)
		lesson.VideoSection = service.plain.Sanitize(lesson.VideoSection)
		lesson.Suggestion = service.plain.Sanitize(lesson.Suggestion)
		lesson.Links = slice.Map(lesson.Links, func(link Link) Link {
			return Link{Title: service.plain.Sanitize(link.Title), URL: strings.TrimSpace(link.URL)}
		})
		return lesson
	})
}
