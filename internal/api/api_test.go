package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"healthtrack/treatment-tracker/internal/adherence"
	"healthtrack/treatment-tracker/internal/domain"
	"healthtrack/treatment-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) FetchSchedule(ctx context.Context, ownerID string) ([]domain.RawRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawRecord), args.Error(1)
}

func (m *MockScheduleRepository) UpdateCompletion(ctx context.Context, ownerID, entryID string, completed bool) error {
	return m.Called(ctx, ownerID, entryID, completed).Error(0)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) FetchTreatmentPlans(ctx context.Context, ownerID string) ([]domain.RawRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawRecord), args.Error(1)
}

func (m *MockHistoryRepository) FetchAssessments(ctx context.Context, ownerID string) ([]domain.RawRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawRecord), args.Error(1)
}

func newTestRouter(scheduleRepo *MockScheduleRepository, historyRepo *MockHistoryRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := zap.NewNop()
	SetupRoutes(router, testSecret, logger,
		adherence.NewRegistry(scheduleRepo, logger),
		service.NewHistoryService(historyRepo, logger),
		time.Second)
	return router
}

func token(t *testing.T, userID string, expires time.Time) string {
	t.Helper()
	claims := jwtClaims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expires)},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, router *gin.Engine, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, userID, time.Now().Add(time.Hour)))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func schedule() []domain.RawRecord {
	return []domain.RawRecord{
		map[string]interface{}{"_id": "d1", "ownerId": "u1", "dayNumber": 1, "dayDate": "2024-03-01"},
		map[string]interface{}{"_id": "d2", "ownerId": "u1", "dayNumber": 2, "completed": true},
	}
}

func TestPing(t *testing.T) {
	router := newTestRouter(new(MockScheduleRepository), new(MockHistoryRepository))
	w := do(t, router, http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(new(MockScheduleRepository), new(MockHistoryRepository))

	w := do(t, router, http.MethodGet, "/api/v1/schedule", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "u1", time.Now().Add(-time.Minute)))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	req.Header.Set("Authorization", "Token abc")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetSchedule(t *testing.T) {
	repo := new(MockScheduleRepository)
	repo.On("FetchSchedule", mock.Anything, "u1").Return(schedule(), nil)
	router := newTestRouter(repo, new(MockHistoryRepository))

	w := do(t, router, http.MethodGet, "/api/v1/schedule", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, adherence.StateReady, resp.State)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "d1", resp.Entries[0].ID)
	assert.NotNil(t, resp.Entries[0].Exercises)
	assert.Equal(t, 1, resp.Summary.CompletedDays)
	assert.Empty(t, resp.Error)
}

func TestGetSchedule_StoreDown(t *testing.T) {
	repo := new(MockScheduleRepository)
	repo.On("FetchSchedule", mock.Anything, "u1").Return(schedule(), nil).Once()
	repo.On("FetchSchedule", mock.Anything, "u1").Return(nil, errors.New("down"))
	router := newTestRouter(repo, new(MockHistoryRepository))

	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/api/v1/schedule", "", "u1").Code)

	// Refresh fails: previous data is served, flagged stale.
	w := do(t, router, http.MethodGet, "/api/v1/schedule", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, adherence.StateStale, resp.State)
	assert.Len(t, resp.Entries, 2)
	assert.NotEmpty(t, resp.Error)

	// Another patient with nothing loaded gets an error.
	repo.On("FetchSchedule", mock.Anything, "u2").Return(nil, errors.New("down"))
	w = do(t, router, http.MethodGet, "/api/v1/schedule", "", "u2")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestUpdateCompletion(t *testing.T) {
	repo := new(MockScheduleRepository)
	repo.On("FetchSchedule", mock.Anything, "u1").Return(schedule(), nil).Once()
	repo.On("UpdateCompletion", mock.Anything, "u1", "d1", true).Return(nil).Once()
	router := newTestRouter(repo, new(MockHistoryRepository))

	// Tracker is idle, the handler loads before toggling.
	w := do(t, router, http.MethodPatch, "/api/v1/schedule/d1/completion", `{"completed": true}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)

	var entry domain.ScheduleEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, "d1", entry.ID)
	assert.True(t, entry.Completed)
	repo.AssertExpectations(t)
}

func TestUpdateCompletion_WhileFirstLoadInFlight(t *testing.T) {
	repo := new(MockScheduleRepository)
	started := make(chan struct{})
	release := make(chan struct{})
	repo.On("FetchSchedule", mock.Anything, "u1").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(schedule(), nil).Once()
	repo.On("FetchSchedule", mock.Anything, "u1").Return(schedule(), nil).Once()
	repo.On("UpdateCompletion", mock.Anything, "u1", "d1", true).Return(nil).Once()
	router := newTestRouter(repo, new(MockHistoryRepository))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "u1", time.Now().Add(time.Hour)))
	getResp := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		getResp <- w
	}()
	<-started

	// Nothing is loaded yet, the PATCH must load on its own instead of 404ing.
	w := do(t, router, http.MethodPatch, "/api/v1/schedule/d1/completion", `{"completed": true}`, "u1")
	require.Equal(t, http.StatusOK, w.Code)

	close(release)
	w = <-getResp
	require.Equal(t, http.StatusOK, w.Code)
	var resp ScheduleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 2)
	assert.True(t, resp.Entries[0].Completed)
	assert.Equal(t, 2, resp.Summary.CompletedDays)
	repo.AssertExpectations(t)
}

func TestUpdateCompletion_Errors(t *testing.T) {
	repo := new(MockScheduleRepository)
	repo.On("FetchSchedule", mock.Anything, "u1").Return(schedule(), nil).Once()
	repo.On("UpdateCompletion", mock.Anything, "u1", "d2", false).Return(errors.New("write failed")).Once()
	router := newTestRouter(repo, new(MockHistoryRepository))

	w := do(t, router, http.MethodPatch, "/api/v1/schedule/d1/completion", `{}`, "u1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPatch, "/api/v1/schedule/missing/completion", `{"completed": true}`, "u1")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPatch, "/api/v1/schedule/d2/completion", `{"completed": false}`, "u1")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	repo.AssertExpectations(t)
}

func TestHistoryEndpoints(t *testing.T) {
	history := new(MockHistoryRepository)
	history.On("FetchTreatmentPlans", mock.Anything, "u1").Return([]domain.RawRecord{
		map[string]interface{}{"_id": "p1", "createdAt": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "duration": "3 weeks"},
	}, nil)
	history.On("FetchAssessments", mock.Anything, "u1").Return(nil, errors.New("down"))
	router := newTestRouter(new(MockScheduleRepository), history)

	w := do(t, router, http.MethodGet, "/api/v1/treatments", "", "u1")
	require.Equal(t, http.StatusOK, w.Code)
	var plans []domain.TreatmentPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plans))
	require.Len(t, plans, 1)
	assert.Equal(t, "3 weeks", plans[0].Duration)
	assert.Equal(t, plans[0].CreatedAt, plans[0].StartDate)

	w = do(t, router, http.MethodGet, "/api/v1/assessments", "", "u1")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
