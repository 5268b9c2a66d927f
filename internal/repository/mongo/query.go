package mongo

import (
	"context"

	"healthtrack/treatment-tracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// idMatch matches a key stored either as an ObjectID or as a plain string.
// Provisioning tools have written both.
func idMatch(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$in": bson.A{oid, id}}
	}
	return id
}

// findRaw runs a query and returns the documents undecoded, for the
// normalizers to shape. An empty result is an empty slice.
func findRaw(ctx context.Context, collection *mongo.Collection, filter bson.M, sort bson.D) ([]domain.RawRecord, error) {
	findOptions := options.Find().SetSort(sort)

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]domain.RawRecord, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			// Keep going, the normalizer reports the hole.
			records = append(records, cursor.Current.String())
			continue
		}
		records = append(records, doc)
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
