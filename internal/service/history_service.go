package service

import (
	"context"
	"errors"
	"fmt"

	"healthtrack/treatment-tracker/internal/domain"
	"healthtrack/treatment-tracker/internal/normalize"
	"healthtrack/treatment-tracker/internal/repository"

	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrOwnerRequired      = errors.New("owner id is required")
	ErrHistoryUnavailable = errors.New("history is temporarily unavailable")
)

// AssessmentView is an assessment with the display class of its severity.
type AssessmentView struct {
	domain.Assessment
	Category domain.SeverityCategory `json:"category"`
}

// HistoryService serves the read-only treatment plan and assessment listings.
type HistoryService interface {
	TreatmentHistory(ctx context.Context, ownerID string) ([]domain.TreatmentPlan, error)
	AssessmentHistory(ctx context.Context, ownerID string) ([]AssessmentView, error)
}

// historyService implements the HistoryService interface.
type historyService struct {
	historyRepo repository.HistoryRepository
	logger      *zap.Logger
}

// NewHistoryService creates a new instance of historyService.
func NewHistoryService(historyRepo repository.HistoryRepository, logger *zap.Logger) HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &historyService{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// TreatmentHistory returns the owner's plans, newest first.
func (s *historyService) TreatmentHistory(ctx context.Context, ownerID string) ([]domain.TreatmentPlan, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	raw, err := s.historyRepo.FetchTreatmentPlans(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to fetch treatment plans", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}
	plans, dropped := normalize.Plans(raw)
	s.reportDropped("treatment_plans", ownerID, dropped)
	return plans, nil
}

// AssessmentHistory returns the owner's assessments, newest first.
func (s *historyService) AssessmentHistory(ctx context.Context, ownerID string) ([]AssessmentView, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	raw, err := s.historyRepo.FetchAssessments(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to fetch assessments", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}
	assessments, dropped := normalize.Assessments(raw)
	s.reportDropped("assessments", ownerID, dropped)

	views := make([]AssessmentView, 0, len(assessments))
	for _, a := range assessments {
		if a.Severity != "" && !a.Severity.Valid() {
			s.logger.Warn("Unknown assessment severity", zap.String("assessment_id", a.ID), zap.String("severity", string(a.Severity)))
		}
		views = append(views, AssessmentView{Assessment: a, Category: a.Severity.Category()})
	}
	return views, nil
}

func (s *historyService) reportDropped(collection, ownerID string, dropped []*normalize.MalformedRecordError) {
	for _, d := range dropped {
		s.logger.Warn("Dropped malformed record",
			zap.String("collection", collection),
			zap.String("owner_id", ownerID),
			zap.Int("index", d.Index),
			zap.String("reason", d.Reason))
	}
}
