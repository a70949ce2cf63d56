package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skolaris/skolaris-api/internal/middleware"
	"github.com/skolaris/skolaris-api/internal/models"
	"github.com/skolaris/skolaris-api/internal/service"
	"github.com/skolaris/skolaris-api/pkg/response"
)

type linkStoreMock struct {
	created     []int64
	unlinked    []int64
	batchAdd    []int64
	batchRemove []int64
	replaced    []int64
}

func (m *linkStoreMock) FindPair(ctx context.Context, parentID, childID int64) (*models.ModuleCourse, error) {
	return nil, sql.ErrNoRows
}

func (m *linkStoreMock) Create(ctx context.Context, parentID, childID int64, volume, coefficient *float64) (*models.ModuleCourse, error) {
	m.created = append(m.created, childID)
	return &models.ModuleCourse{ID: 9, ModuleID: parentID, CourseID: childID, Status: models.StatusActive}, nil
}

func (m *linkStoreMock) Resurrect(ctx context.Context, linkID, parentID int64, volume, coefficient *float64) (*models.ModuleCourse, error) {
	return nil, sql.ErrNoRows
}

func (m *linkStoreMock) Unlink(ctx context.Context, parentID, childID int64) error {
	m.unlinked = append(m.unlinked, childID)
	return nil
}

func (m *linkStoreMock) Deactivate(ctx context.Context, parentID, childID int64) error { return nil }

func (m *linkStoreMock) BatchApply(ctx context.Context, parentID int64, add, remove []int64) error {
	m.batchAdd = append(m.batchAdd, add...)
	m.batchRemove = append(m.batchRemove, remove...)
	return nil
}

func (m *linkStoreMock) ReplaceAll(ctx context.Context, parentID int64, orderedChildIDs []int64) error {
	m.replaced = append([]int64{}, orderedChildIDs...)
	return nil
}

type boardReaderMock struct{}

func (boardReaderMock) ListAssigned(ctx context.Context, companyID, parentID int64) ([]models.AssignedItem, error) {
	return []models.AssignedItem{{ID: 10, Name: "Algebra", Tri: 0}}, nil
}

func (boardReaderMock) ListUnassigned(ctx context.Context, companyID, parentID int64) ([]models.CatalogItem, error) {
	return nil, nil
}

type refReaderMock struct{}

func (refReaderMock) FindRef(ctx context.Context, id int64) (*models.OwnedRef, error) {
	return &models.OwnedRef{ID: id, CompanyID: 7}, nil
}

func (refReaderMock) FilterOwned(ctx context.Context, companyID int64, ids []int64) ([]int64, error) {
	return ids, nil
}

func newTestModuleAssignmentHandler(links *linkStoreMock) *AssignmentHandler {
	svc := service.NewAssignmentService("module", "course", links, boardReaderMock{}, refReaderMock{}, refReaderMock{}, nil, 0, nil, nil, nil)
	return NewModuleAssignmentHandler(svc)
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != nil {
		reader = bytes.NewBuffer(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 1, CompanyID: 7, Role: "admin"})
	return c, w
}

func TestAssignmentHandlerBoard(t *testing.T) {
	handler := newTestModuleAssignmentHandler(&linkStoreMock{})

	c, w := testContext(t, http.MethodGet, "/modules/1/assignments", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Board(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.AssignmentBoard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Assigned, 1)
	assert.Equal(t, "Algebra", envelope.Data.Assigned[0].Name)
}

func TestAssignmentHandlerAddBindsCourseID(t *testing.T) {
	links := &linkStoreMock{}
	handler := newTestModuleAssignmentHandler(links)

	c, w := testContext(t, http.MethodPost, "/modules/1/courses", []byte(`{"course_id": 10}`))
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Add(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []int64{10}, links.created)
}

func TestAssignmentHandlerAddRejectsMissingCourseID(t *testing.T) {
	links := &linkStoreMock{}
	handler := newTestModuleAssignmentHandler(links)

	c, w := testContext(t, http.MethodPost, "/modules/1/courses", []byte(`{"volume": 2}`))
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Add(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, links.created)
}

func TestAssignmentHandlerRemove(t *testing.T) {
	links := &linkStoreMock{}
	handler := newTestModuleAssignmentHandler(links)

	c, w := testContext(t, http.MethodDelete, "/modules/1/courses/10", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}, {Key: "courseId", Value: "10"}}

	handler.Remove(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int64{10}, links.unlinked)
}

func TestAssignmentHandlerRemoveInvalidChildID(t *testing.T) {
	handler := newTestModuleAssignmentHandler(&linkStoreMock{})

	c, w := testContext(t, http.MethodDelete, "/modules/1/courses/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}, {Key: "courseId", Value: "abc"}}

	handler.Remove(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerBatchEmptyOperation(t *testing.T) {
	handler := newTestModuleAssignmentHandler(&linkStoreMock{})

	c, w := testContext(t, http.MethodPost, "/modules/1/courses/batch", []byte(`{"add": [], "remove": []}`))
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Batch(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "EMPTY_OPERATION", envelope.Error.Code)
}

func TestAssignmentHandlerReplaceBindsCourseIDs(t *testing.T) {
	links := &linkStoreMock{}
	handler := newTestModuleAssignmentHandler(links)

	c, w := testContext(t, http.MethodPut, "/modules/1/courses", []byte(`{"course_ids": [12, 10, 11]}`))
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Replace(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []int64{12, 10, 11}, links.replaced)
}

func TestAssignmentHandlerBatchReportsAffected(t *testing.T) {
	links := &linkStoreMock{}
	handler := newTestModuleAssignmentHandler(links)

	c, w := testContext(t, http.MethodPost, "/modules/1/courses/batch", []byte(`{"add": [10, 11], "remove": [12]}`))
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Batch(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.BatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.Affected)
	assert.Equal(t, []int64{10, 11}, links.batchAdd)
}
