// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package course

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nikhilrai1/lms/internal/platform/apperr"
	"github.com/Nikhilrai1/lms/internal/platform/dberr"
)

// # Course Repository

// PostgresCourseRepository implements [CourseRepository] using pgx.
//
// Lists and lesson content live in JSONB columns. The public projection is
// computed in SQL so enrolled-only fields never leave the database on the
// read path.
type PostgresCourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new PostgreSQL implementation of the CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *PostgresCourseRepository {
	return &PostgresCourseRepository{pool: pool}
}

const courseColumns = `id, name, description, price, estimated_price, thumbnail, tags, level,
	demo_url, benefits, prerequisites, reviews, %s, ratings, purchased, created_at, updated_at`

// trimmedCourseData strips the enrolled-only keys from every lesson, keeping order.
const trimmedCourseData = `COALESCE((
		SELECT jsonb_agg(lesson - 'videoUrl' - 'links' - 'suggestion' - 'questions' ORDER BY position)
		FROM jsonb_array_elements(course_data) WITH ORDINALITY AS lessons(lesson, position)
	), '[]'::jsonb)`

var (
	selectFull    = "SELECT " + fmt.Sprintf(courseColumns, "course_data") + " FROM courses"
	selectTrimmed = "SELECT " + fmt.Sprintf(courseColumns, trimmedCourseData) + " FROM courses"
)

func scanCourse(row pgx.Row) (*Course, error) {
	course := &Course{}
	err := row.Scan(
		&course.ID,
		&course.Name,
		&course.Description,
		&course.Price,
		&course.EstimatedPrice,
		&course.Thumbnail,
		&course.Tags,
		&course.Level,
		&course.DemoURL,
		&course.Benefits,
		&course.Prerequisites,
		&course.Reviews,
		&course.CourseData,
		&course.Ratings,
		&course.Purchased,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	course.Benefits = nonNil(course.Benefits)
	course.Prerequisites = nonNil(course.Prerequisites)
	course.Reviews = nonNil(course.Reviews)
	course.CourseData = nonNil(course.CourseData)
	return course, nil
}

func (repository *PostgresCourseRepository) findOne(context context.Context, query, id, op string) (*Course, error) {
	course, err := scanCourse(repository.pool.QueryRow(context, query+" WHERE id = $1", id))
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound(courseResource).WithCause(err)
		}
		return nil, fmt.Errorf("postgres_course_repo_%s_failed: %w", op, err)
	}
	return course, nil
}

// FindByID resolves a full course by primary key.
func (repository *PostgresCourseRepository) FindByID(context context.Context, id string) (*Course, error) {
	return repository.findOne(context, selectFull, id, "find_by_id")
}

// FindTrimmedByID resolves the public projection by primary key.
func (repository *PostgresCourseRepository) FindTrimmedByID(context context.Context, id string) (*Course, error) {
	return repository.findOne(context, selectTrimmed, id, "find_trimmed_by_id")
}

/*
ListTrimmed returns the public projection of every course.

Returns:
  - []Course: Ordered by creation time
  - error: Database errors
*/
func (repository *PostgresCourseRepository) ListTrimmed(context context.Context) ([]Course, error) {
	rows, err := repository.pool.Query(context, selectTrimmed+" ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("postgres_course_repo_list_failed: %w", err)
	}
	defer rows.Close()

	courses := []Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_course_repo_list_scan_failed: %w", err)
		}
		courses = append(courses, *course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_course_repo_list_failed: %w", err)
	}
	return courses, nil
}

/*
Create persists a new course record into the courses table.

Parameters:
  - context: context.Context
  - course: *Course (ID set by the caller)

Returns:
  - error: Persistence failures
*/
func (repository *PostgresCourseRepository) Create(context context.Context, course *Course) error {
	const query = `
		INSERT INTO courses (
			id, name, description, price, estimated_price, thumbnail, tags, level, demo_url,
			benefits, prerequisites, reviews, course_data, ratings, purchased, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)`

	now := time.Now().UTC()
	_, err := repository.pool.Exec(context, query,
		course.ID,
		course.Name,
		course.Description,
		course.Price,
		course.EstimatedPrice,
		course.Thumbnail,
		course.Tags,
		course.Level,
		course.DemoURL,
		nonNil(course.Benefits),
		nonNil(course.Prerequisites),
		nonNil(course.Reviews),
		nonNil(course.CourseData),
		course.Ratings,
		course.Purchased,
		now,
	)
	if err != nil {
		return fmt.Errorf("postgres_course_repo_create_failed: %w", err)
	}

	course.CreatedAt = now
	course.UpdatedAt = now
	return nil
}

/*
Update rewrites every mutable column of the course.

Parameters:
  - context: context.Context
  - course: *Course

Returns:
  - error: NotFound or persistence failures
*/
func (repository *PostgresCourseRepository) Update(context context.Context, course *Course) error {
	const query = `
		UPDATE courses
		SET name = $2, description = $3, price = $4, estimated_price = $5, thumbnail = $6,
		    tags = $7, level = $8, demo_url = $9, benefits = $10, prerequisites = $11,
		    reviews = $12, course_data = $13, ratings = $14, purchased = $15, updated_at = $16
		WHERE id = $1`

	now := time.Now().UTC()
	tag, err := repository.pool.Exec(context, query,
		course.ID,
		course.Name,
		course.Description,
		course.Price,
		course.EstimatedPrice,
		course.Thumbnail,
		course.Tags,
		course.Level,
		course.DemoURL,
		nonNil(course.Benefits),
		nonNil(course.Prerequisites),
		nonNil(course.Reviews),
		nonNil(course.CourseData),
		course.Ratings,
		course.Purchased,
		now,
	)
	if err != nil {
		return fmt.Errorf("postgres_course_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(courseResource)
	}

	course.UpdatedAt = now
	return nil
}
