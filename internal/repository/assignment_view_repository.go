package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/skolaris/skolaris-api/internal/models"
)

// AssignmentViewRepository reconstructs the assignment board read views.
// Like the link store it is parametrized by direction; the child table is the
// entity collection being assigned to the parent.
type AssignmentViewRepository struct {
	db         *sqlx.DB
	childTable string
	parentCol  string
	childCol   string
}

// NewModuleAssignmentViews reads course boards for module parents.
func NewModuleAssignmentViews(db *sqlx.DB) *AssignmentViewRepository {
	return &AssignmentViewRepository{db: db, childTable: "courses", parentCol: "module_id", childCol: "course_id"}
}

// NewCourseAssignmentViews reads module boards for course parents.
func NewCourseAssignmentViews(db *sqlx.DB) *AssignmentViewRepository {
	return &AssignmentViewRepository{db: db, childTable: "modules", parentCol: "course_id", childCol: "module_id"}
}

// ListAssigned returns the parent's active links joined to child records of
// the same school, ordered by sequence position with newest-first tiebreak.
// Rows whose child belongs to another school are silently excluded.
func (r *AssignmentViewRepository) ListAssigned(ctx context.Context, companyID, parentID int64) ([]models.AssignedItem, error) {
	query := fmt.Sprintf(`
SELECT ch.id, ch.name, ch.code, mc.tri, mc.volume, mc.coefficient, mc.created_at AS assigned_at
FROM module_courses mc
JOIN %s ch ON ch.id = mc.%s
WHERE mc.%s = $1 AND mc.status <> -2 AND ch.company_id = $2
ORDER BY mc.tri ASC, mc.created_at DESC`, r.childTable, r.childCol, r.parentCol)
	var items []models.AssignedItem
	if err := r.db.SelectContext(ctx, &items, query, parentID, companyID); err != nil {
		return nil, fmt.Errorf("list assigned %s: %w", r.childTable, err)
	}
	return items, nil
}

// ListUnassigned returns the school's active children without an active link
// to the parent, newest first.
func (r *AssignmentViewRepository) ListUnassigned(ctx context.Context, companyID, parentID int64) ([]models.CatalogItem, error) {
	query := fmt.Sprintf(`
SELECT ch.id, ch.name, ch.code, ch.created_at
FROM %s ch
WHERE ch.company_id = $1 AND ch.status <> -2
  AND NOT EXISTS (
    SELECT 1 FROM module_courses mc
    WHERE mc.%s = ch.id AND mc.%s = $2 AND mc.status <> -2
  )
ORDER BY ch.created_at DESC`, r.childTable, r.childCol, r.parentCol)
	var items []models.CatalogItem
	if err := r.db.SelectContext(ctx, &items, query, companyID, parentID); err != nil {
		return nil, fmt.Errorf("list unassigned %s: %w", r.childTable, err)
	}
	return items, nil
}
