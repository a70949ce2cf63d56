package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skolaris/skolaris-api/internal/models"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, companyID int64, filter models.SessionFilter) ([]models.Session, int, error)
	ListActiveForDay(ctx context.Context, companyID int64, date string) ([]models.Session, error)
	FindByID(ctx context.Context, id int64) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id int64) error
}

// CreateSessionRequest describes payload for planning a session.
type CreateSessionRequest struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime     string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime       string `json:"end_time" validate:"required,datetime=15:04"`
	TeacherID     int64  `json:"teacher_id" validate:"required"`
	ClassID       int64  `json:"class_id" validate:"required"`
	ClassRoomID   int64  `json:"class_room_id" validate:"required"`
	SessionTypeID int64  `json:"session_type_id" validate:"required"`
}

// UpdateSessionRequest reschedules an existing session.
type UpdateSessionRequest struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime     string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime       string `json:"end_time" validate:"required,datetime=15:04"`
	TeacherID     int64  `json:"teacher_id" validate:"required"`
	ClassID       int64  `json:"class_id" validate:"required"`
	ClassRoomID   int64  `json:"class_room_id" validate:"required"`
	SessionTypeID int64  `json:"session_type_id" validate:"required"`
}

// PlanningService coordinates session planning and overlap detection.
type PlanningService struct {
	repo      sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlanningService instantiates PlanningService.
func NewPlanningService(repo sessionRepository, validate *validator.Validate, logger *zap.Logger) *PlanningService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanningService{repo: repo, validator: validate, logger: logger}
}

// List returns sessions with pagination metadata.
func (s *PlanningService) List(ctx context.Context, companyID int64, filter models.SessionFilter) ([]models.Session, *models.ListMeta, error) {
	sessions, total, err := s.repo.List(ctx, companyID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, models.NewListMeta(filter.Page, filter.Limit, total), nil
}

// Get loads a single session, scoped to the caller's school.
func (s *PlanningService) Get(ctx context.Context, companyID, id int64) (*models.Session, error) {
	session, err := s.loadOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Create plans a new session after the overlap check passes. The check and
// the insert are deliberately not wrapped in one transaction: two concurrent
// requests can both pass the check and both insert. Planning writes are
// low-contention and downstream readers tolerate the window.
func (s *PlanningService) Create(ctx context.Context, companyID int64, req CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	session := models.Session{
		CompanyID:     companyID,
		Date:          normalizeDate(req.Date),
		StartTime:     normalizeClock(req.StartTime),
		EndTime:       normalizeClock(req.EndTime),
		TeacherID:     req.TeacherID,
		ClassID:       req.ClassID,
		ClassRoomID:   req.ClassRoomID,
		SessionTypeID: req.SessionTypeID,
		Status:        models.StatusActive,
	}

	if err := s.CheckNoOverlap(ctx, session, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return &session, nil
}

// Update reschedules a session, re-running the overlap check against the
// merged state while excluding the session itself.
func (s *PlanningService) Update(ctx context.Context, companyID, id int64, req UpdateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	existing, err := s.loadOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	updated := models.Session{
		ID:            existing.ID,
		CompanyID:     existing.CompanyID,
		Date:          normalizeDate(req.Date),
		StartTime:     normalizeClock(req.StartTime),
		EndTime:       normalizeClock(req.EndTime),
		TeacherID:     req.TeacherID,
		ClassID:       req.ClassID,
		ClassRoomID:   req.ClassRoomID,
		SessionTypeID: req.SessionTypeID,
		Status:        existing.Status,
		CreatedAt:     existing.CreatedAt,
	}

	if err := s.CheckNoOverlap(ctx, updated, existing.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	return &updated, nil
}

// Delete removes a session entry.
func (s *PlanningService) Delete(ctx context.Context, companyID, id int64) error {
	if _, err := s.loadOwned(ctx, companyID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	return nil
}

// CheckNoOverlap rejects a candidate whose time range collides with an
// existing non-deleted session of the same school on the same date sharing
// the teacher, the class or the classroom. Ranges are half-open: sessions
// that merely touch at an endpoint do not overlap. excludeID skips the
// candidate's own row during updates.
func (s *PlanningService) CheckNoOverlap(ctx context.Context, candidate models.Session, excludeID int64) error {
	if candidate.StartTime >= candidate.EndTime {
		return appErrors.Clone(appErrors.ErrInvalidRange,
			fmt.Sprintf("start time %s must be before end time %s", candidate.StartTime, candidate.EndTime))
	}

	existing, err := s.repo.ListActiveForDay(ctx, candidate.CompanyID, candidate.Date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check session overlaps")
	}

	for _, item := range existing {
		if excludeID != 0 && item.ID == excludeID {
			continue
		}
		// Zero-padded HH:MM compares correctly as text.
		if item.EndTime <= candidate.StartTime || item.StartTime >= candidate.EndTime {
			continue
		}
		if item.TeacherID == candidate.TeacherID {
			return s.wrapConflict("TEACHER", fmt.Sprintf("teacher %d is already booked from %s to %s", item.TeacherID, item.StartTime, item.EndTime), item)
		}
		if item.ClassID == candidate.ClassID {
			return s.wrapConflict("CLASS", fmt.Sprintf("class %d is already booked from %s to %s", item.ClassID, item.StartTime, item.EndTime), item)
		}
		if item.ClassRoomID == candidate.ClassRoomID {
			return s.wrapConflict("CLASSROOM", fmt.Sprintf("classroom %d is already booked from %s to %s", item.ClassRoomID, item.StartTime, item.EndTime), item)
		}
	}
	return nil
}

func (s *PlanningService) loadOwned(ctx context.Context, companyID, id int64) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("session %d not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrTenantMismatch, fmt.Sprintf("session %d not found", id))
	}
	return session, nil
}

// normalizeClock re-formats a validated HH:MM value to zero-padded form.
// The datetime validator is width-lenient ("9:30" passes), but the overlap
// check and the stored rows rely on zero-padded text comparing correctly.
func normalizeClock(value string) string {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return value
	}
	return t.Format("15:04")
}

// normalizeDate re-formats a validated YYYY-MM-DD value to zero-padded form
// so same-day sessions always land in the same date bucket.
func normalizeDate(value string) string {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return t.Format("2006-01-02")
}

func (s *PlanningService) wrapConflict(dimension, message string, existing models.Session) error {
	conflict := models.SessionConflict{
		SessionID:   existing.ID,
		Date:        existing.Date,
		StartTime:   existing.StartTime,
		EndTime:     existing.EndTime,
		TeacherID:   existing.TeacherID,
		ClassID:     existing.ClassID,
		ClassRoomID: existing.ClassRoomID,
		Dimension:   dimension,
	}
	domainErr := &models.SessionConflictError{Dimension: dimension, Message: message, Conflict: conflict}
	return appErrors.Wrap(domainErr, appErrors.ErrSchedulingConflict.Code, appErrors.ErrSchedulingConflict.Status, fmt.Sprintf("scheduling conflict: %s", message))
}
