package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/skolaris/skolaris-api/internal/models"
)

// LinkRepository is the ordered link store over the module_courses join table.
// It is parametrized by which column plays the parent role, so the same store
// serves both directions of the relation: module→courses and course→modules.
// Sequence positions (tri) are assigned per parent at insertion time and never
// renumbered when sibling rows are removed.
type LinkRepository struct {
	db        *sqlx.DB
	parentCol string
	childCol  string
}

// NewModuleCourseLinks returns the store with modules as parents.
func NewModuleCourseLinks(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db, parentCol: "module_id", childCol: "course_id"}
}

// NewCourseModuleLinks returns the store with courses as parents.
func NewCourseModuleLinks(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db, parentCol: "course_id", childCol: "module_id"}
}

const linkColumns = "id, module_id, course_id, tri, volume, coefficient, status, created_at, updated_at"

// FindPair loads the link row for a (parent, child) pair in any status.
// Returns sql.ErrNoRows when the pair was never linked.
func (r *LinkRepository) FindPair(ctx context.Context, parentID, childID int64) (*models.ModuleCourse, error) {
	query := fmt.Sprintf("SELECT %s FROM module_courses WHERE %s = $1 AND %s = $2", linkColumns, r.parentCol, r.childCol)
	var link models.ModuleCourse
	if err := r.db.GetContext(ctx, &link, query, parentID, childID); err != nil {
		return nil, err
	}
	return &link, nil
}

// CountActive returns the number of active links for a parent.
func (r *LinkRepository) CountActive(ctx context.Context, parentID int64) (int, error) {
	return r.countActive(ctx, r.db, parentID)
}

func (r *LinkRepository) countActive(ctx context.Context, q sqlx.QueryerContext, parentID int64) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM module_courses WHERE %s = $1 AND status <> -2", r.parentCol)
	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, parentID); err != nil {
		return 0, fmt.Errorf("count active links: %w", err)
	}
	return count, nil
}

// Create inserts a new link for the pair. The sequence position is read and
// assigned inside one transaction: tri = current count of the parent's active
// links.
func (r *LinkRepository) Create(ctx context.Context, parentID, childID int64, volume, coefficient *float64) (*models.ModuleCourse, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create link: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var tri int
	if tri, err = r.countActive(ctx, tx, parentID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO module_courses (%s, %s, tri, volume, coefficient, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING %s`, r.parentCol, r.childCol, linkColumns)
	var link models.ModuleCourse
	if err = tx.GetContext(ctx, &link, query, parentID, childID, tri, volume, coefficient, models.StatusActive, now, now); err != nil {
		return nil, fmt.Errorf("insert link: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create link: %w", err)
	}
	return &link, nil
}

// Resurrect reactivates a soft-deleted pair instead of duplicating it. The row
// re-enters the parent's order at the end, with a freshly assigned position.
func (r *LinkRepository) Resurrect(ctx context.Context, linkID, parentID int64, volume, coefficient *float64) (*models.ModuleCourse, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin resurrect link: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var tri int
	if tri, err = r.countActive(ctx, tx, parentID); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE module_courses SET status = $1, tri = $2, volume = $3, coefficient = $4, updated_at = $5 WHERE id = $6 RETURNING %s`, linkColumns)
	var link models.ModuleCourse
	if err = tx.GetContext(ctx, &link, query, models.StatusActive, tri, volume, coefficient, time.Now().UTC(), linkID); err != nil {
		return nil, fmt.Errorf("resurrect link: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit resurrect link: %w", err)
	}
	return &link, nil
}

// Unlink hard-deletes the active link of a pair. Sibling positions keep their
// values, leaving a gap in the sequence. Returns sql.ErrNoRows when no active
// link exists.
func (r *LinkRepository) Unlink(ctx context.Context, parentID, childID int64) error {
	query := fmt.Sprintf("DELETE FROM module_courses WHERE %s = $1 AND %s = $2 AND status <> -2", r.parentCol, r.childCol)
	result, err := r.db.ExecContext(ctx, query, parentID, childID)
	if err != nil {
		return fmt.Errorf("unlink pair: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check unlinked rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Deactivate soft-deletes the active link of a pair via the status sentinel.
// Returns sql.ErrNoRows when no active link exists.
func (r *LinkRepository) Deactivate(ctx context.Context, parentID, childID int64) error {
	query := fmt.Sprintf("UPDATE module_courses SET status = -2, updated_at = $1 WHERE %s = $2 AND %s = $3 AND status <> -2", r.parentCol, r.childCol)
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), parentID, childID)
	if err != nil {
		return fmt.Errorf("deactivate pair: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// BatchApply inserts and removes links for one parent inside one transaction.
// The sequence base is read once at the start of the add phase and incremented
// locally per id; inserts are idempotent (existing pairs are skipped by the
// unique pair constraint) and the removals run as one bulk delete. The base is
// not re-validated under concurrent writers, so readers must tolerate
// duplicate tri values across concurrently committed batches.
func (r *LinkRepository) BatchApply(ctx context.Context, parentID int64, add, remove []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch links: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if len(add) > 0 {
		var base int
		if base, err = r.countActive(ctx, tx, parentID); err != nil {
			return err
		}
		now := time.Now().UTC()
		query := fmt.Sprintf(`INSERT INTO module_courses (%s, %s, tri, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (module_id, course_id) DO NOTHING`, r.parentCol, r.childCol)
		for i, childID := range add {
			if _, err = tx.ExecContext(ctx, query, parentID, childID, base+i, models.StatusActive, now, now); err != nil {
				return fmt.Errorf("batch insert link: %w", err)
			}
		}
	}

	if len(remove) > 0 {
		query := fmt.Sprintf("DELETE FROM module_courses WHERE %s = $1 AND %s = ANY($2)", r.parentCol, r.childCol)
		if _, err = tx.ExecContext(ctx, query, parentID, pq.Array(remove)); err != nil {
			return fmt.Errorf("batch delete links: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit batch links: %w", err)
	}
	return nil
}

// ReplaceAll drops every link of the parent and recreates the provided
// children in order, tri = position in the list. The caller supplies an
// already de-duplicated list.
func (r *LinkRepository) ReplaceAll(ctx context.Context, parentID int64, orderedChildIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace links: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	deleteQuery := fmt.Sprintf("DELETE FROM module_courses WHERE %s = $1", r.parentCol)
	if _, err = tx.ExecContext(ctx, deleteQuery, parentID); err != nil {
		return fmt.Errorf("clear existing links: %w", err)
	}

	now := time.Now().UTC()
	insertQuery := fmt.Sprintf(`INSERT INTO module_courses (%s, %s, tri, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, r.parentCol, r.childCol)
	for i, childID := range orderedChildIDs {
		if _, err = tx.ExecContext(ctx, insertQuery, parentID, childID, i, models.StatusActive, now, now); err != nil {
			return fmt.Errorf("insert replacement link: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace links: %w", err)
	}
	return nil
}
