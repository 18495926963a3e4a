// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package course implements the course catalogue: admin authoring, the cached
public read path and the enrollment-gated content endpoint.

# Read Path

Public lookups are cache-aside. A miss loads the trimmed projection from the
store and caches it without expiry. Authoring writes go to the store only, so
cached entries stay as they were until the cache is flushed.
*/
package course

import (
	"slices"
	"time"

	"github.com/Nikhilrai1/lms/internal/platform/imagehost"
	"github.com/Nikhilrai1/lms/internal/users/identity"
)

const courseResource = "Course"

// Error codes and client messages.
const (
	CodeNotEnrolled = "NOT_ENROLLED"

	MsgNotEnrolled         = "You are not eligible to access this course"
	MsgInvalidThumbnail    = "Thumbnail must be a base64 payload"
	MsgThumbnailUploadFail = "Thumbnail upload failed"
	MsgCourseCacheFailed   = "Course cache unavailable"
)

// # Domain Entities

// Course is a catalogue entry with its full content.
type Course struct {
	ID             string           `json:"_id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          float64          `json:"price"`
	EstimatedPrice *float64         `json:"estimatedPrice,omitempty"`
	Thumbnail      *imagehost.Image `json:"thumbnail,omitempty"`
	Tags           string           `json:"tags"`
	Level          string           `json:"level"`
	DemoURL        string           `json:"demoUrl"`
	Benefits       []Title          `json:"benefits"`
	Prerequisites  []Title          `json:"prerequisites"`
	Reviews        []Review         `json:"reviews"`
	CourseData     []Content        `json:"courseData"`
	Ratings        float64          `json:"ratings"`
	Purchased      int              `json:"purchased"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// Title is a single benefit or prerequisite line.
type Title struct {
	Title string `json:"title"`
}

// Review is a learner review with its replies.
type Review struct {
	User           *identity.User `json:"user,omitempty"`
	Rating         float64        `json:"rating"`
	Comment        string         `json:"comment"`
	CommentReplies []Reply        `json:"commentReplies,omitempty"`
}

// Content is one lesson of a course.
//
// VideoURL, Links, Suggestion and Questions are enrolled-only and are left
// out of the public projection.
type Content struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	VideoURL     string     `json:"videoUrl,omitempty"`
	VideoSection string     `json:"videoSection"`
	VideoLength  float64    `json:"videoLength"`
	VideoPlayer  string     `json:"videoPlayer"`
	Links        []Link     `json:"links,omitempty"`
	Suggestion   string     `json:"suggestion,omitempty"`
	Questions    []Question `json:"questions,omitempty"`
}

// Link is an external resource attached to a lesson.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Question is a learner question on a lesson.
type Question struct {
	User            *identity.User `json:"user,omitempty"`
	Question        string         `json:"question"`
	QuestionReplies []Reply        `json:"questionReplies,omitempty"`
}

// Reply answers a review or a question.
type Reply struct {
	User   *identity.User `json:"user,omitempty"`
	Answer string         `json:"answer"`
}

// Trimmed returns a copy without the enrolled-only lesson fields.
func (c *Course) Trimmed() *Course {
	clone := c.clone()
	for i := range clone.CourseData {
		clone.CourseData[i].VideoURL = ""
		clone.CourseData[i].Links = nil
		clone.CourseData[i].Suggestion = ""
		clone.CourseData[i].Questions = nil
	}
	return clone
}

// clone copies the top-level slices so callers can mutate the result.
func (c *Course) clone() *Course {
	clone := *c
	clone.Benefits = nonNil(slices.Clone(c.Benefits))
	clone.Prerequisites = nonNil(slices.Clone(c.Prerequisites))
	clone.Reviews = nonNil(slices.Clone(c.Reviews))
	clone.CourseData = nonNil(slices.Clone(c.CourseData))
	for i := range clone.CourseData {
		clone.CourseData[i].Links = slices.Clone(c.CourseData[i].Links)
		clone.CourseData[i].Questions = slices.Clone(c.CourseData[i].Questions)
	}
	if c.Thumbnail != nil {
		thumbnail := *c.Thumbnail
		clone.Thumbnail = &thumbnail
	}
	return &clone
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
