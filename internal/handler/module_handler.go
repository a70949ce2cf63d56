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

// ModuleHandler serves the module catalog read surface.
type ModuleHandler struct {
	service *service.ModuleService
}

// NewModuleHandler constructs handler.
func NewModuleHandler(svc *service.ModuleService) *ModuleHandler {
	return &ModuleHandler{service: svc}
}

// List godoc
// @Summary List modules
// @Tags Modules
// @Produce json
// @Param search query string false "Search by name or code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /modules [get]
func (h *ModuleHandler) List(c *gin.Context) {
	filter := catalogFilterFromQuery(c)
	modules, meta, err := h.service.List(c.Request.Context(), companyFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, meta)
}

// Get godoc
// @Summary Get a module
// @Tags Modules
// @Produce json
// @Param id path int true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /modules/{id} [get]
func (h *ModuleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid module id"))
		return
	}
	module, err := h.service.Get(c.Request.Context(), companyFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, module, nil)
}

func catalogFilterFromQuery(c *gin.Context) models.CatalogFilter {
	var filter models.CatalogFilter
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.Limit = limit
	}
	return filter
}
