package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skolaris/skolaris-api/internal/service"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
	"github.com/skolaris/skolaris-api/pkg/response"
)

// ModuleCourseLinkRequest attaches one course to a module.
type ModuleCourseLinkRequest struct {
	CourseID    int64    `json:"course_id" binding:"required,gt=0"`
	Volume      *float64 `json:"volume"`
	Coefficient *float64 `json:"coefficient"`
}

// CourseModuleLinkRequest attaches one module to a course.
type CourseModuleLinkRequest struct {
	ModuleID    int64    `json:"module_id" binding:"required,gt=0"`
	Volume      *float64 `json:"volume"`
	Coefficient *float64 `json:"coefficient"`
}

// ReplaceCoursesRequest carries the full ordered course list of a module.
type ReplaceCoursesRequest struct {
	CourseIDs []int64 `json:"course_ids"`
}

// ReplaceModulesRequest carries the full ordered module list of a course.
type ReplaceModulesRequest struct {
	ModuleIDs []int64 `json:"module_ids"`
}

// AssignmentHandler exposes one direction of the assignment engine over HTTP.
// The child path parameter name and the request body shapes differ per
// direction; everything else is shared.
type AssignmentHandler struct {
	service     *service.AssignmentService
	childParam  string
	bindLink    func(*gin.Context) (service.LinkRequest, error)
	bindReplace func(*gin.Context) (service.ReplaceAssignmentsRequest, error)
}

// NewModuleAssignmentHandler serves /modules/:id/courses.
func NewModuleAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		service:    svc,
		childParam: "courseId",
		bindLink: func(c *gin.Context) (service.LinkRequest, error) {
			var req ModuleCourseLinkRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return service.LinkRequest{}, err
			}
			return service.LinkRequest{ChildID: req.CourseID, Volume: req.Volume, Coefficient: req.Coefficient}, nil
		},
		bindReplace: func(c *gin.Context) (service.ReplaceAssignmentsRequest, error) {
			var req ReplaceCoursesRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return service.ReplaceAssignmentsRequest{}, err
			}
			return service.ReplaceAssignmentsRequest{ChildIDs: req.CourseIDs}, nil
		},
	}
}

// NewCourseAssignmentHandler serves /courses/:id/modules.
func NewCourseAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		service:    svc,
		childParam: "moduleId",
		bindLink: func(c *gin.Context) (service.LinkRequest, error) {
			var req CourseModuleLinkRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return service.LinkRequest{}, err
			}
			return service.LinkRequest{ChildID: req.ModuleID, Volume: req.Volume, Coefficient: req.Coefficient}, nil
		},
		bindReplace: func(c *gin.Context) (service.ReplaceAssignmentsRequest, error) {
			var req ReplaceModulesRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return service.ReplaceAssignmentsRequest{}, err
			}
			return service.ReplaceAssignmentsRequest{ChildIDs: req.ModuleIDs}, nil
		},
	}
}

// Board godoc
// @Summary Get assigned and unassigned items for a parent
// @Tags Assignments
// @Produce json
// @Param id path int true "Parent ID"
// @Success 200 {object} response.Envelope
// @Router /modules/{id}/assignments [get]
func (h *AssignmentHandler) Board(c *gin.Context) {
	parentID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return
	}
	board, err := h.service.GetAssignments(c.Request.Context(), companyFromContext(c), parentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}

// Add godoc
// @Summary Link one item to a parent
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "Parent ID"
// @Success 201 {object} response.Envelope
// @Router /modules/{id}/courses [post]
func (h *AssignmentHandler) Add(c *gin.Context) {
	parentID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return
	}
	req, err := h.bindLink(c)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	link, err := h.service.AddSingle(c.Request.Context(), companyFromContext(c), parentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Remove godoc
// @Summary Unlink one item from a parent
// @Tags Assignments
// @Param id path int true "Parent ID"
// @Success 204
// @Router /modules/{id}/courses/{courseId} [delete]
func (h *AssignmentHandler) Remove(c *gin.Context) {
	parentID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return
	}
	childID, ok := pathID(c, h.childParam)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return
	}
	if err := h.service.RemoveSingle(c.Request.Context(), companyFromContext(c), parentID, childID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Deactivate godoc
// @Summary Soft-delete the link of a pair
// @Tags Assignments
// @Param id path int true "Parent ID"
// @Success 204
// @Router /modules/{id}/courses/{courseId} [patch]
func (h *AssignmentHandler) Deactivate(c *gin.Context) {
	parentID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return
	}
	childID, ok := pathID(c, h.childParam)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), companyFromContext(c), parentID, childID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Batch godoc
// @Summary Add and remove several items in one operation
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "Parent ID"
// @Param payload body service.BatchAssignRequest true "Add/remove lists"
// @Success 200 {object} response.Envelope
// @Router /modules/{id}/courses/batch [post]
func (h *AssignmentHandler) Batch(c *gin.Context) {
	parentID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return
	}
	var req service.BatchAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.service.BatchAssign(c.Request.Context(), companyFromContext(c), parentID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Replace godoc
// @Summary Replace all assignments of a parent with an ordered list
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path int true "Parent ID"
// @Param payload body ReplaceCoursesRequest true "Ordered ids"
// @Success 204
// @Router /modules/{id}/courses [put]
func (h *AssignmentHandler) Replace(c *gin.Context) {
	parentID, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return
	}
	req, err := h.bindReplace(c)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.service.ReplaceAll(c.Request.Context(), companyFromContext(c), parentID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
