package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/skolaris/skolaris-api/internal/models"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
)

type moduleRepository interface {
	List(ctx context.Context, companyID int64, filter models.CatalogFilter) ([]models.Module, int, error)
	FindByID(ctx context.Context, id int64) (*models.Module, error)
}

// ModuleService serves the module read surface.
type ModuleService struct {
	repo   moduleRepository
	logger *zap.Logger
}

// NewModuleService instantiates ModuleService.
func NewModuleService(repo moduleRepository, logger *zap.Logger) *ModuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleService{repo: repo, logger: logger}
}

// List returns modules with pagination metadata.
func (s *ModuleService) List(ctx context.Context, companyID int64, filter models.CatalogFilter) ([]models.Module, *models.ListMeta, error) {
	modules, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	return modules, models.NewListMeta(filter.Page, filter.Limit, total), nil
}

// Get loads a single module, scoped to the caller's school.
func (s *ModuleService) Get(ctx context.Context, companyID, id int64) (*models.Module, error) {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("module %d not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	if module.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrTenantMismatch, fmt.Sprintf("module %d not found", id))
	}
	return module, nil
}
