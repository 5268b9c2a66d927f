package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthtrack/treatment-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockHistoryRepository is a mock of repository.HistoryRepository
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

func TestHistoryService_TreatmentHistory(t *testing.T) {
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	repo := new(MockHistoryRepository)
	repo.On("FetchTreatmentPlans", mock.Anything, "u1").Return([]domain.RawRecord{
		map[string]interface{}{"_id": "p1", "createdAt": created, "duration": "4 weeks"},
		"broken",
	}, nil)

	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewHistoryService(repo, zap.New(core))

	plans, err := svc.TreatmentHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, created, plans[0].StartDate)
	assert.Equal(t, []domain.ScheduleItem{}, plans[0].Medications)
	assert.Equal(t, 1, logs.FilterMessage("Dropped malformed record").Len())
}

func TestHistoryService_AssessmentHistory(t *testing.T) {
	repo := new(MockHistoryRepository)
	repo.On("FetchAssessments", mock.Anything, "u1").Return([]domain.RawRecord{
		map[string]interface{}{"_id": "a1", "severity": "severe", "primaryCondition": "Sciatica"},
		map[string]interface{}{"_id": "a2", "severity": "moderate"},
		map[string]interface{}{"_id": "a3", "severity": "critical"},
	}, nil)

	svc := NewHistoryService(repo, zap.NewNop())
	views, err := svc.AssessmentHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.Equal(t, domain.CategoryDanger, views[0].Category)
	assert.Equal(t, "Sciatica", views[0].PrimaryCondition)
	assert.Equal(t, domain.CategoryWarning, views[1].Category)
	assert.Equal(t, domain.CategoryOK, views[2].Category)
}

func TestHistoryService_Failures(t *testing.T) {
	storeErr := errors.New("no primary")
	repo := new(MockHistoryRepository)
	repo.On("FetchTreatmentPlans", mock.Anything, "u1").Return(nil, storeErr)
	repo.On("FetchAssessments", mock.Anything, "u1").Return(nil, storeErr)

	svc := NewHistoryService(repo, nil)

	_, err := svc.TreatmentHistory(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrHistoryUnavailable)
	assert.ErrorIs(t, err, storeErr)

	_, err = svc.AssessmentHistory(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrHistoryUnavailable)

	_, err = svc.AssessmentHistory(context.Background(), "")
	assert.ErrorIs(t, err, ErrOwnerRequired)
	repo.AssertNumberOfCalls(t, "FetchAssessments", 1)
}
