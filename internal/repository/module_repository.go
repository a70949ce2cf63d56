package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/skolaris/skolaris-api/internal/models"
)

// ModuleRepository provides tenant-scoped reads over modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository creates a new module repository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

const moduleColumns = "id, company_id, name, code, status, created_at, updated_at"

// List returns modules of a school with optional search and pagination.
func (r *ModuleRepository) List(ctx context.Context, companyID int64, filter models.CatalogFilter) ([]models.Module, int, error) {
	base := "FROM modules WHERE company_id = $1 AND status <> -2"
	args := []interface{}{companyID}

	if filter.Search != "" {
		base += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"name": true, "code": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", moduleColumns, base, sortBy, order, limit, offset)
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list modules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count modules: %w", err)
	}

	return modules, total, nil
}

// FindByID loads an active module by id regardless of owner; callers check tenancy.
func (r *ModuleRepository) FindByID(ctx context.Context, id int64) (*models.Module, error) {
	query := fmt.Sprintf("SELECT %s FROM modules WHERE id = $1 AND status <> -2", moduleColumns)
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		return nil, err
	}
	return &module, nil
}

// FindRef loads the ownership projection of an active module.
func (r *ModuleRepository) FindRef(ctx context.Context, id int64) (*models.OwnedRef, error) {
	const query = `SELECT id, company_id FROM modules WHERE id = $1 AND status <> -2`
	var ref models.OwnedRef
	if err := r.db.GetContext(ctx, &ref, query, id); err != nil {
		return nil, err
	}
	return &ref, nil
}

// FilterOwned returns the subset of ids that are active modules of the school.
func (r *ModuleRepository) FilterOwned(ctx context.Context, companyID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id FROM modules WHERE company_id = $1 AND status <> -2 AND id = ANY($2)`
	var owned []int64
	if err := r.db.SelectContext(ctx, &owned, query, companyID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("filter owned modules: %w", err)
	}
	return owned, nil
}
