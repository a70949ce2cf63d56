package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/skolaris/skolaris-api/internal/models"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, companyID int64, filter models.CatalogFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

// CourseService serves the course read surface.
type CourseService struct {
	repo   courseRepository
	logger *zap.Logger
}

// NewCourseService instantiates CourseService.
func NewCourseService(repo courseRepository, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, logger: logger}
}

// List returns courses with pagination metadata.
func (s *CourseService) List(ctx context.Context, companyID int64, filter models.CatalogFilter) ([]models.Course, *models.ListMeta, error) {
	courses, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, models.NewListMeta(filter.Page, filter.Limit, total), nil
}

// Get loads a single course, scoped to the caller's school.
func (s *CourseService) Get(ctx context.Context, companyID, id int64) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %d not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrTenantMismatch, fmt.Sprintf("course %d not found", id))
	}
	return course, nil
}
