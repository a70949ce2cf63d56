package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/skolaris/skolaris-api/internal/models"
)

// SessionRepository provides persistence for planned sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, company_id, date, start_time, end_time, teacher_id, class_id, class_room_id, session_type_id, status, created_at, updated_at"

// List returns sessions of a school with optional filtering and pagination.
func (r *SessionRepository) List(ctx context.Context, companyID int64, filter models.SessionFilter) ([]models.Session, int, error) {
	base := "FROM sessions WHERE company_id = $1 AND status <> -2"
	args := []interface{}{companyID}
	var conditions []string

	if filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, filter.Date)
	}
	if filter.TeacherID != 0 {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassID != 0 {
		conditions = append(conditions, fmt.Sprintf("class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.ClassRoomID != 0 {
		conditions = append(conditions, fmt.Sprintf("class_room_id = $%d", len(args)+1))
		args = append(args, filter.ClassRoomID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"date":       true,
		"start_time": true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "date"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", sessionColumns, base, sortBy, order, limit, offset)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	return sessions, total, nil
}

// ListActiveForDay returns the non-deleted sessions of a school on one date.
// This is the candidate set the overlap detector scans.
func (r *SessionRepository) ListActiveForDay(ctx context.Context, companyID int64, date string) ([]models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE company_id = $1 AND date = $2 AND status <> -2", sessionColumns)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, companyID, date); err != nil {
		return nil, fmt.Errorf("list sessions for day: %w", err)
	}
	return sessions, nil
}

// ListDayDetail returns a day of planning with resource names resolved, for exports.
func (r *SessionRepository) ListDayDetail(ctx context.Context, companyID int64, date string) ([]models.SessionDetail, error) {
	const query = `
SELECT s.id, s.company_id, s.date, s.start_time, s.end_time, s.teacher_id, s.class_id, s.class_room_id, s.session_type_id, s.status, s.created_at, s.updated_at,
       t.name AS teacher_name, c.name AS class_name, cr.name AS class_room_name
FROM sessions s
JOIN teachers t ON t.id = s.teacher_id
JOIN classes c ON c.id = s.class_id
JOIN class_rooms cr ON cr.id = s.class_room_id
WHERE s.company_id = $1 AND s.date = $2 AND s.status <> -2
ORDER BY s.start_time ASC, c.name ASC`
	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, companyID, date); err != nil {
		return nil, fmt.Errorf("list day planning detail: %w", err)
	}
	return sessions, nil
}

// FindByID loads a session by id regardless of owner; callers check tenancy.
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE id = $1 AND status <> -2", sessionColumns)
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create stores a new session record.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	const query = `INSERT INTO sessions (company_id, date, start_time, end_time, teacher_id, class_id, class_room_id, session_type_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := r.db.GetContext(ctx, &session.ID, query,
		session.CompanyID, session.Date, session.StartTime, session.EndTime,
		session.TeacherID, session.ClassID, session.ClassRoomID, session.SessionTypeID,
		session.Status, session.CreatedAt, session.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update modifies a session record.
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sessions SET date = :date, start_time = :start_time, end_time = :end_time, teacher_id = :teacher_id, class_id = :class_id, class_room_id = :class_room_id, session_type_id = :session_type_id, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Delete removes a session by id.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
