package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/skolaris/skolaris-api/internal/models"
)

// CourseRepository provides tenant-scoped reads over courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = "id, company_id, name, code, status, created_at, updated_at"

// List returns courses of a school with optional search and pagination.
func (r *CourseRepository) List(ctx context.Context, companyID int64, filter models.CatalogFilter) ([]models.Course, int, error) {
	base := "FROM courses WHERE company_id = $1 AND status <> -2"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", courseColumns, base, sortBy, order, limit, offset)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}

	return courses, total, nil
}

// FindByID loads an active course by id regardless of owner; callers check tenancy.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s FROM courses WHERE id = $1 AND status <> -2", courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindRef loads the ownership projection of an active course.
func (r *CourseRepository) FindRef(ctx context.Context, id int64) (*models.OwnedRef, error) {
	const query = `SELECT id, company_id FROM courses WHERE id = $1 AND status <> -2`
	var ref models.OwnedRef
	if err := r.db.GetContext(ctx, &ref, query, id); err != nil {
		return nil, err
	}
	return &ref, nil
}

// FilterOwned returns the subset of ids that are active courses of the school.
func (r *CourseRepository) FilterOwned(ctx context.Context, companyID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id FROM courses WHERE company_id = $1 AND status <> -2 AND id = ANY($2)`
	var owned []int64
	if err := r.db.SelectContext(ctx, &owned, query, companyID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("filter owned courses: %w", err)
	}
	return owned, nil
}

// ListExportRows returns the course catalog with active module counts for CSV export.
func (r *CourseRepository) ListExportRows(ctx context.Context, companyID int64) ([]models.CourseExportRow, error) {
	const query = `
SELECT c.id, c.name, c.code,
       COUNT(mc.id) FILTER (WHERE mc.status <> -2) AS module_count
FROM courses c
LEFT JOIN module_courses mc ON mc.course_id = c.id
WHERE c.company_id = $1 AND c.status <> -2
GROUP BY c.id, c.name, c.code
ORDER BY c.name ASC`
	var rows []models.CourseExportRow
	if err := r.db.SelectContext(ctx, &rows, query, companyID); err != nil {
		return nil, fmt.Errorf("list course export rows: %w", err)
	}
	return rows, nil
}
