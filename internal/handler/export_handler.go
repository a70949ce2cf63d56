package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skolaris/skolaris-api/internal/service"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
	"github.com/skolaris/skolaris-api/pkg/response"
)

// ExportHandler serves downloadable planning and catalog documents.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// PlanningPDF godoc
// @Summary Export one day of planning as PDF
// @Tags Exports
// @Produce application/pdf
// @Param date query string true "Day to export (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /planning/export [get]
func (h *ExportHandler) PlanningPDF(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date query parameter is required"))
		return
	}
	payload, err := h.service.PlanningPDF(c.Request.Context(), companyFromContext(c), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=planning-%s.pdf", date))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// CoursesCSV godoc
// @Summary Export the course catalog as CSV
// @Tags Exports
// @Produce text/csv
// @Success 200 {file} binary
// @Router /courses/export [get]
func (h *ExportHandler) CoursesCSV(c *gin.Context) {
	payload, err := h.service.CourseCatalogCSV(c.Request.Context(), companyFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=courses.csv")
	c.Data(http.StatusOK, "text/csv", payload)
}
