package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skolaris/skolaris-api/internal/models"
	"github.com/skolaris/skolaris-api/internal/service"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
	"github.com/skolaris/skolaris-api/pkg/response"
)

// SessionHandler manages session planning endpoints.
type SessionHandler struct {
	service     *service.PlanningService
	maxPageSize int
}

// NewSessionHandler constructs handler.
func NewSessionHandler(svc *service.PlanningService, maxPageSize int) *SessionHandler {
	return &SessionHandler{service: svc, maxPageSize: maxPageSize}
}

// List godoc
// @Summary List planned sessions
// @Tags Sessions
// @Produce json
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param teacherId query int false "Filter by teacher"
// @Param classId query int false "Filter by class"
// @Param classRoomId query int false "Filter by classroom"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var filter models.SessionFilter
	filter.Date = c.Query("date")
	filter.TeacherID = queryID(c, "teacherId")
	filter.ClassID = queryID(c, "classId")
	filter.ClassRoomID = queryID(c, "classRoomId")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.Limit = limit
	}
	if h.maxPageSize > 0 && filter.Limit > h.maxPageSize {
		filter.Limit = h.maxPageSize
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	sessions, meta, err := h.service.List(c.Request.Context(), companyFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, meta)
}

// Get godoc
// @Summary Get a planned session
// @Tags Sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
		return
	}
	session, err := h.service.Get(c.Request.Context(), companyFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Create godoc
// @Summary Plan a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	session, err := h.service.Create(c.Request.Context(), companyFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Reschedule a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path int true "Session ID"
// @Param payload body service.UpdateSessionRequest true "Session payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
		return
	}
	var req service.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	session, err := h.service.Update(c.Request.Context(), companyFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary Remove a planned session
// @Tags Sessions
// @Param id path int true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), companyFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func queryID(c *gin.Context, name string) int64 {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
