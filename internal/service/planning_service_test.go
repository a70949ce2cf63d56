package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skolaris/skolaris-api/internal/models"
	appErrors "github.com/skolaris/skolaris-api/pkg/errors"
)

type sessionRepoStub struct {
	items   map[int64]*models.Session
	day     []models.Session
	created []*models.Session
	updated []*models.Session
	deleted []int64
	nextID  int64
}

func (s *sessionRepoStub) List(ctx context.Context, companyID int64, filter models.SessionFilter) ([]models.Session, int, error) {
	return s.day, len(s.day), nil
}

func (s *sessionRepoStub) ListActiveForDay(ctx context.Context, companyID int64, date string) ([]models.Session, error) {
	var out []models.Session
	for _, item := range s.day {
		if item.Date == date {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *sessionRepoStub) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	if session, ok := s.items[id]; ok {
		cp := *session
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *sessionRepoStub) Create(ctx context.Context, session *models.Session) error {
	s.nextID++
	session.ID = s.nextID
	s.created = append(s.created, session)
	return nil
}

func (s *sessionRepoStub) Update(ctx context.Context, session *models.Session) error {
	s.updated = append(s.updated, session)
	return nil
}

func (s *sessionRepoStub) Delete(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func plannedSession(id int64, start, end string) models.Session {
	return models.Session{
		ID: id, CompanyID: 7, Date: "2025-09-01",
		StartTime: start, EndTime: end,
		TeacherID: 3, ClassID: 4, ClassRoomID: 5, SessionTypeID: 1,
		Status: models.StatusActive,
	}
}

func sessionRequest(start, end string) CreateSessionRequest {
	return CreateSessionRequest{
		Date: "2025-09-01", StartTime: start, EndTime: end,
		TeacherID: 3, ClassID: 4, ClassRoomID: 5, SessionTypeID: 1,
	}
}

func TestPlanningServiceCreateRejectsInvertedRange(t *testing.T) {
	repo := &sessionRepoStub{}
	svc := NewPlanningService(repo, nil, nil)

	_, err := svc.Create(context.Background(), 7, sessionRequest("10:00", "08:00"))
	require.Error(t, err)
	assert.Equal(t, "INVALID_RANGE", appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestPlanningServiceCreateDetectsTeacherOverlap(t *testing.T) {
	repo := &sessionRepoStub{day: []models.Session{plannedSession(1, "08:00", "10:00")}}
	svc := NewPlanningService(repo, nil, nil)

	req := sessionRequest("09:00", "11:00")
	req.ClassID = 40
	req.ClassRoomID = 50

	_, err := svc.Create(context.Background(), 7, req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "SCHEDULING_CONFLICT", appErr.Code)
	assert.Contains(t, appErr.Message, "teacher 3")

	var conflict *models.SessionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "TEACHER", conflict.Dimension)
	assert.Equal(t, int64(1), conflict.Conflict.SessionID)
}

func TestPlanningServiceCreateAllowsBackToBack(t *testing.T) {
	repo := &sessionRepoStub{day: []models.Session{plannedSession(1, "08:00", "10:00")}}
	svc := NewPlanningService(repo, nil, nil)

	session, err := svc.Create(context.Background(), 7, sessionRequest("10:00", "12:00"))
	require.NoError(t, err)
	assert.NotZero(t, session.ID)
	assert.Equal(t, models.StatusActive, session.Status)
}

func TestPlanningServiceCreateAllowsDisjointResources(t *testing.T) {
	repo := &sessionRepoStub{day: []models.Session{plannedSession(1, "08:00", "10:00")}}
	svc := NewPlanningService(repo, nil, nil)

	req := sessionRequest("09:00", "11:00")
	req.TeacherID = 30
	req.ClassID = 40
	req.ClassRoomID = 50

	_, err := svc.Create(context.Background(), 7, req)
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
}

func TestPlanningServiceCreateNormalizesUnpaddedTimes(t *testing.T) {
	repo := &sessionRepoStub{day: []models.Session{plannedSession(1, "09:00", "10:00")}}
	svc := NewPlanningService(repo, nil, nil)

	// "9:30" passes the width-lenient datetime validator but would compare
	// after "10:00" as text; it must still collide with the 09:00-10:00 booking.
	_, err := svc.Create(context.Background(), 7, sessionRequest("9:30", "9:45"))
	require.Error(t, err)
	assert.Equal(t, "SCHEDULING_CONFLICT", appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestPlanningServiceCreateStoresZeroPaddedTimes(t *testing.T) {
	repo := &sessionRepoStub{}
	svc := NewPlanningService(repo, nil, nil)

	req := sessionRequest("9:30", "10:30")
	req.Date = "2025-9-1"

	session, err := svc.Create(context.Background(), 7, req)
	require.NoError(t, err)
	assert.Equal(t, "09:30", session.StartTime)
	assert.Equal(t, "10:30", session.EndTime)
	assert.Equal(t, "2025-09-01", session.Date)
}

func TestPlanningServiceUpdateNormalizesUnpaddedTimes(t *testing.T) {
	existing := plannedSession(1, "13:00", "14:00")
	other := plannedSession(2, "09:00", "10:00")
	repo := &sessionRepoStub{
		items: map[int64]*models.Session{1: &existing},
		day:   []models.Session{existing, other},
	}
	svc := NewPlanningService(repo, nil, nil)

	_, err := svc.Update(context.Background(), 7, 1, UpdateSessionRequest(sessionRequest("9:30", "9:45")))
	require.Error(t, err)
	assert.Equal(t, "SCHEDULING_CONFLICT", appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestPlanningServiceUpdateExcludesOwnRow(t *testing.T) {
	existing := plannedSession(1, "08:00", "10:00")
	repo := &sessionRepoStub{
		items: map[int64]*models.Session{1: &existing},
		day:   []models.Session{existing},
	}
	svc := NewPlanningService(repo, nil, nil)

	// Shifting the session inside its own old window must not self-conflict.
	updated, err := svc.Update(context.Background(), 7, 1, UpdateSessionRequest(sessionRequest("08:30", "09:30")))
	require.NoError(t, err)
	assert.Equal(t, "08:30", updated.StartTime)
	assert.Len(t, repo.updated, 1)
}

func TestPlanningServiceUpdateStillChecksOtherSessions(t *testing.T) {
	existing := plannedSession(1, "08:00", "10:00")
	other := plannedSession(2, "13:00", "15:00")
	repo := &sessionRepoStub{
		items: map[int64]*models.Session{1: &existing},
		day:   []models.Session{existing, other},
	}
	svc := NewPlanningService(repo, nil, nil)

	_, err := svc.Update(context.Background(), 7, 1, UpdateSessionRequest(sessionRequest("14:00", "16:00")))
	require.Error(t, err)
	assert.Equal(t, "SCHEDULING_CONFLICT", appErrors.FromError(err).Code)
}

func TestPlanningServiceGetHidesForeignTenant(t *testing.T) {
	existing := plannedSession(1, "08:00", "10:00")
	repo := &sessionRepoStub{items: map[int64]*models.Session{1: &existing}}
	svc := NewPlanningService(repo, nil, nil)

	_, err := svc.Get(context.Background(), 999, 1)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "session 1 not found", appErr.Message)
}

func TestPlanningServiceDeleteUnknownSession(t *testing.T) {
	repo := &sessionRepoStub{items: map[int64]*models.Session{}}
	svc := NewPlanningService(repo, nil, nil)

	err := svc.Delete(context.Background(), 7, 12)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}
