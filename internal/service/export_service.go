package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/skolaris/skolaris-api/internal/models"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
	"github.com/skolaris/skolaris-api/pkg/export"
)

type planningDayReader interface {
	ListDayDetail(ctx context.Context, companyID int64, date string) ([]models.SessionDetail, error)
}

type courseExportReader interface {
	ListExportRows(ctx context.Context, companyID int64) ([]models.CourseExportRow, error)
}

// ExportService renders planning and catalog data into downloadable documents.
type ExportService struct {
	sessions planningDayReader
	courses  courseExportReader
	pdf      *export.PDFExporter
	csv      *export.CSVExporter
	logger   *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(sessions planningDayReader, courses courseExportReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sessions: sessions,
		courses:  courses,
		pdf:      export.NewPDFExporter(),
		csv:      export.NewCSVExporter(),
		logger:   logger,
	}
}

// PlanningPDF renders one day of the school's planning as a PDF table.
func (s *ExportService) PlanningPDF(ctx context.Context, companyID int64, date string) ([]byte, error) {
	sessions, err := s.sessions.ListDayDetail(ctx, companyID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day planning")
	}

	data := export.Dataset{
		Headers: []string{"Start", "End", "Class", "Teacher", "Room"},
	}
	for _, session := range sessions {
		data.Rows = append(data.Rows, map[string]string{
			"Start":   session.StartTime,
			"End":     session.EndTime,
			"Class":   session.ClassName,
			"Teacher": session.TeacherName,
			"Room":    session.ClassRoomName,
		})
	}

	payload, err := s.pdf.Render(data, fmt.Sprintf("Planning %s", date))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render planning pdf")
	}
	return payload, nil
}

// CourseCatalogCSV renders the school's courses with module counts as CSV.
func (s *ExportService) CourseCatalogCSV(ctx context.Context, companyID int64) ([]byte, error) {
	rows, err := s.courses.ListExportRows(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
	}

	data := export.Dataset{
		Headers: []string{"ID", "Name", "Code", "Modules"},
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"ID":      strconv.FormatInt(row.ID, 10),
			"Name":    row.Name,
			"Code":    row.Code,
			"Modules": strconv.Itoa(row.ModuleCount),
		})
	}

	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render course csv")
	}
	return payload, nil
}
