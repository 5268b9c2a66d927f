package mongo

import (
	"context"
	"errors"

	"healthtrack/treatment-tracker/internal/domain"
	"healthtrack/treatment-tracker/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const scheduleCollectionName = "treatment_schedule"

// mongoScheduleRepository implements repository.ScheduleRepository
type mongoScheduleRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduleRepository creates a schedule repository backed by MongoDB.
func NewMongoScheduleRepository(db *mongo.Database) repository.ScheduleRepository {
	return &mongoScheduleRepository{
		collection: db.Collection(scheduleCollectionName),
	}
}

// FetchSchedule returns every schedule day of the owner, day 1 first.
func (r *mongoScheduleRepository) FetchSchedule(ctx context.Context, ownerID string) ([]domain.RawRecord, error) {
	if ownerID == "" {
		return nil, repository.ErrInvalidID
	}
	filter := bson.M{domain.FieldOwnerID: idMatch(ownerID)}
	return findRaw(ctx, r.collection, filter, bson.D{{Key: domain.FieldDayNumber, Value: 1}})
}

// UpdateCompletion sets the completed flag and nothing else.
func (r *mongoScheduleRepository) UpdateCompletion(ctx context.Context, ownerID, entryID string, completed bool) error {
	if ownerID == "" || entryID == "" {
		return repository.ErrInvalidID
	}

	// Owner is part of the filter so one patient can never flip another's day.
	filter := bson.M{
		domain.FieldID:      idMatch(entryID),
		domain.FieldOwnerID: idMatch(ownerID),
	}
	update := bson.M{"$set": bson.M{domain.FieldCompleted: completed}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			return errors.Join(repository.ErrUpdateFailed, err)
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureScheduleIndexes creates the indexes the schedule queries rely on.
// The unique compound index keeps one entry per day per owner.
func EnsureScheduleIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: domain.FieldOwnerID, Value: 1}, {Key: domain.FieldDayNumber, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
