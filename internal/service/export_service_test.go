package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skolaris/skolaris-api/internal/models"
)

type dayReaderStub struct {
	sessions []models.SessionDetail
}

func (s *dayReaderStub) ListDayDetail(ctx context.Context, companyID int64, date string) ([]models.SessionDetail, error) {
	return s.sessions, nil
}

type courseExportStub struct {
	rows []models.CourseExportRow
}

func (s *courseExportStub) ListExportRows(ctx context.Context, companyID int64) ([]models.CourseExportRow, error) {
	return s.rows, nil
}

func TestExportServicePlanningPDF(t *testing.T) {
	sessions := &dayReaderStub{sessions: []models.SessionDetail{
		{
			Session:       models.Session{ID: 1, StartTime: "08:00", EndTime: "10:00"},
			TeacherName:   "A. Martin",
			ClassName:     "L1 Info",
			ClassRoomName: "B204",
		},
	}}
	svc := NewExportService(sessions, &courseExportStub{}, nil)

	payload, err := svc.PlanningPDF(context.Background(), 7, "2025-09-01")
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestExportServiceCourseCatalogCSV(t *testing.T) {
	courses := &courseExportStub{rows: []models.CourseExportRow{
		{ID: 3, Name: "Algebra", Code: "MATH-101", ModuleCount: 2},
	}}
	svc := NewExportService(&dayReaderStub{}, courses, nil)

	payload, err := svc.CourseCatalogCSV(context.Background(), 7)
	require.NoError(t, err)
	out := string(payload)
	assert.True(t, strings.HasPrefix(out, "\ufeff"), "csv should start with a utf-8 bom")
	assert.Contains(t, out, "ID,Name,Code,Modules")
	assert.Contains(t, out, "3,Algebra,MATH-101,2")
}
