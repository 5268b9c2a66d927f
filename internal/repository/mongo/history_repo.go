package mongo

import (
	"context"

	"healthtrack/treatment-tracker/internal/domain"
	"healthtrack/treatment-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	treatmentPlanCollectionName = "treatment_plans"
	assessmentCollectionName    = "assessments"
)

// mongoHistoryRepository implements repository.HistoryRepository
type mongoHistoryRepository struct {
	plans       *mongo.Collection
	assessments *mongo.Collection
}

// NewMongoHistoryRepository creates the read-only plan and assessment repository.
func NewMongoHistoryRepository(db *mongo.Database) repository.HistoryRepository {
	return &mongoHistoryRepository{
		plans:       db.Collection(treatmentPlanCollectionName),
		assessments: db.Collection(assessmentCollectionName),
	}
}

var newestFirst = bson.D{{Key: domain.FieldCreatedAt, Value: -1}}

// FetchTreatmentPlans returns the owner's plans, newest first.
func (r *mongoHistoryRepository) FetchTreatmentPlans(ctx context.Context, ownerID string) ([]domain.RawRecord, error) {
	if ownerID == "" {
		return nil, repository.ErrInvalidID
	}
	return findRaw(ctx, r.plans, bson.M{domain.FieldOwnerID: idMatch(ownerID)}, newestFirst)
}

// FetchAssessments returns the owner's assessments, newest first.
func (r *mongoHistoryRepository) FetchAssessments(ctx context.Context, ownerID string) ([]domain.RawRecord, error) {
	if ownerID == "" {
		return nil, repository.ErrInvalidID
	}
	return findRaw(ctx, r.assessments, bson.M{domain.FieldOwnerID: idMatch(ownerID)}, newestFirst)
}

// EnsureHistoryIndexes creates the owner/createdAt index on a history collection.
func EnsureHistoryIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: domain.FieldOwnerID, Value: 1}, {Key: domain.FieldCreatedAt, Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
