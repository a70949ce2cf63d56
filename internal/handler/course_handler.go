package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skolaris/skolaris-api/internal/service"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
	"github.com/skolaris/skolaris-api/pkg/response"
)

// CourseHandler serves the course catalog read surface.
type CourseHandler struct {
	service *service.CourseService
}

// NewCourseHandler constructs handler.
func NewCourseHandler(svc *service.CourseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param search query string false "Search by name or code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := catalogFilterFromQuery(c)
	courses, meta, err := h.service.List(c.Request.Context(), companyFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, meta)
}

// Get godoc
// @Summary Get a course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course id"))
		return
	}
	course, err := h.service.Get(c.Request.Context(), companyFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}
