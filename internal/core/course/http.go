// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

package course

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Nikhilrai1/lms/internal/platform/middleware"
	requestutil "github.com/Nikhilrai1/lms/internal/platform/request"
	"github.com/Nikhilrai1/lms/internal/platform/respond"
	"github.com/Nikhilrai1/lms/internal/platform/sec"
	"github.com/Nikhilrai1/lms/internal/platform/validate"
	"github.com/Nikhilrai1/lms/pkg/slice"
)

// Handler implements the HTTP layer for the course catalogue.
//
// # Security
//
//   - Catalogue reads are public.
//   - Lesson content requires the access-token gate and an enrollment.
//   - Authoring requires the admin role.
type Handler struct {
	courseService *Service
}

// NewHandler constructs a new course [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{courseService: service}
}

// RegisterRoutes mounts the catalogue endpoints.
func (handler *Handler) RegisterRoutes(router chi.Router, authenticate func(http.Handler) http.Handler) {
	router.Get("/get-course/{id}", handler.getCourse)
	router.Get("/get-all-course", handler.getAllCourses)

	router.Group(func(protected chi.Router) {
		protected.Use(authenticate)
		protected.Get("/get-course-content/{id}", handler.getCourseContent)

		protected.Group(func(admin chi.Router) {
			admin.Use(middleware.AuthorizeRoles(sec.RoleAdmin))
			admin.Post("/create-course", handler.createCourse)
			admin.Put("/edit-course/{id}", handler.editCourse)
		})
	})
}

const (
	fieldCourse    = "course"
	fieldCourses   = "courses"
	fieldContent   = "content"
	fieldFromCache = "fromCache"
)

/*
GET /api/v1/get-course/{id}.

Response:
  - 200: course, fromCache
  - 404: Unknown course
*/
func (handler *Handler) getCourse(writer http.ResponseWriter, request *http.Request) {
	course, fromCache, err := handler.courseService.GetSingleCourse(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Body{fieldCourse: course, fieldFromCache: fromCache})
}

/*
GET /api/v1/get-all-course.

Response:
  - 200: courses, fromCache
*/
func (handler *Handler) getAllCourses(writer http.ResponseWriter, request *http.Request) {
	courses, fromCache, err := handler.courseService.GetAllCourses(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Body{fieldCourses: courses, fieldFromCache: fromCache})
}

/*
GET /api/v1/get-course-content/{id}.

Response:
  - 200: content: Full lesson list
  - 403: NOT_ENROLLED
*/
func (handler *Handler) getCourseContent(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	content, err := handler.courseService.GetCourseContent(request.Context(), user, requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, respond.Body{fieldContent: content})
}

type titleRequest struct {
	Title string `json:"title" validate:"required,max=300"`
}

type linkRequest struct {
	Title string `json:"title" validate:"required,max=300"`
	URL   string `json:"url" validate:"required,url"`
}

type contentRequest struct {
	Title        string        `json:"title" validate:"required,max=300"`
	Description  string        `json:"description"`
	VideoURL     string        `json:"videoUrl" validate:"required"`
	VideoSection string        `json:"videoSection"`
	VideoLength  float64       `json:"videoLength" validate:"gte=0"`
	VideoPlayer  string        `json:"videoPlayer"`
	Links        []linkRequest `json:"links" validate:"dive"`
	Suggestion   string        `json:"suggestion"`
}

type createCourseRequest struct {
	Name           string           `json:"name" validate:"required,max=200"`
	Description    string           `json:"description" validate:"required"`
	Price          float64          `json:"price" validate:"gte=0"`
	EstimatedPrice *float64         `json:"estimatedPrice" validate:"omitempty,gte=0"`
	Thumbnail      string           `json:"thumbnail"`
	Tags           string           `json:"tags" validate:"required"`
	Level          string           `json:"level" validate:"required"`
	DemoURL        string           `json:"demoUrl" validate:"required"`
	Benefits       []titleRequest   `json:"benefits" validate:"dive"`
	Prerequisites  []titleRequest   `json:"prerequisites" validate:"dive"`
	CourseData     []contentRequest `json:"courseData" validate:"dive"`
}

/*
POST /api/v1/create-course.

Response:
  - 201: course: The created course
  - 400: Validation failure or undecodable thumbnail
  - 403: Caller is not an admin
*/
func (handler *Handler) createCourse(writer http.ResponseWriter, request *http.Request) {
	var input createCourseRequest
	if err := requestutil.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	course, err := handler.courseService.CreateCourse(request.Context(), CourseInput{
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Thumbnail:      input.Thumbnail,
		Tags:           input.Tags,
		Level:          input.Level,
		DemoURL:        input.DemoURL,
		Benefits:       toTitles(input.Benefits),
		Prerequisites:  toTitles(input.Prerequisites),
		CourseData:     toContent(input.CourseData),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, respond.Body{fieldCourse: course})
}

type editCourseRequest struct {
	Name           *string           `json:"name"`
	Description    *string           `json:"description"`
	Price          *float64          `json:"price"`
	EstimatedPrice *float64          `json:"estimatedPrice"`
	Thumbnail      *string           `json:"thumbnail"`
	Tags           *string           `json:"tags"`
	Level          *string           `json:"level"`
	DemoURL        *string           `json:"demoUrl"`
	Benefits       *[]titleRequest   `json:"benefits" validate:"omitempty,dive"`
	Prerequisites  *[]titleRequest   `json:"prerequisites" validate:"omitempty,dive"`
	CourseData     *[]contentRequest `json:"courseData" validate:"omitempty,dive"`
}

/*
PUT /api/v1/edit-course/{id}.

Request:
  - body: editCourseRequest (every field optional)

Response:
  - 201: course: The updated course
  - 404: Unknown course
*/
func (handler *Handler) editCourse(writer http.ResponseWriter, request *http.Request) {
	var input editCourseRequest
	if err := requestutil.Bind(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Name != nil {
		v.Required("name", *input.Name).MaxLen("name", *input.Name, 200)
	}
	if input.Price != nil {
		v.NonNegative("price", *input.Price)
	}
	if input.EstimatedPrice != nil {
		v.NonNegative("estimatedPrice", *input.EstimatedPrice)
	}
	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch := CoursePatch{
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		EstimatedPrice: input.EstimatedPrice,
		Thumbnail:      input.Thumbnail,
		Tags:           input.Tags,
		Level:          input.Level,
		DemoURL:        input.DemoURL,
	}
	if input.Benefits != nil {
		benefits := toTitles(*input.Benefits)
		patch.Benefits = &benefits
	}
	if input.Prerequisites != nil {
		prerequisites := toTitles(*input.Prerequisites)
		patch.Prerequisites = &prerequisites
	}
	if input.CourseData != nil {
		lessons := toContent(*input.CourseData)
		patch.CourseData = &lessons
	}

	course, err := handler.courseService.EditCourse(request.Context(), requestutil.Param(request, "id"), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, respond.Body{fieldCourse: course})
}

func toTitles(requests []titleRequest) []Title {
	return slice.Map(requests, func(request titleRequest) Title {
		return Title{Title: request.Title}
	})
}

func toContent(requests []contentRequest) []Content {
	return slice.Map(requests, func(request contentRequest) Content {
		return Content{
			Title:        request.Title,
			Description:  request.Description,
			VideoURL:     request.VideoURL,
			VideoSection: request.VideoSection,
			VideoLength:  request.VideoLength,
			VideoPlayer:  request.VideoPlayer,
			Links: slice.Map(request.Links, func(link linkRequest) Link {
				return Link{Title: link.Title, URL: link.URL}
			}),
			Suggestion: request.Suggestion,
		}
	})
}
