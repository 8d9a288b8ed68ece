package store

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davidpoza/dps-toggl-api/logging"
)

// MongoStore implements Store over a single Mongo database. Every operation
// runs through a circuit breaker so a dead database trips fast instead of
// stacking up driver timeouts.
type MongoStore struct {
	db      *mongo.Database
	breaker *gobreaker.CircuitBreaker
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "MongoStoreCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
	return &MongoStore{db: db, breaker: cb}
}

// EnsureIndexes creates the unique index backing the user email constraint.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(Users).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *MongoStore) execute(op func() (interface{}, error)) (interface{}, error) {
	return s.breaker.Execute(op)
}

func (s *MongoStore) FindByID(ctx context.Context, collection string, id primitive.ObjectID, out interface{}) error {
	_, err := s.execute(func() (interface{}, error) {
		err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	})
	return err
}

func (s *MongoStore) FindWhere(ctx context.Context, collection string, filter bson.M, sort bson.D, out interface{}) error {
	_, err := s.execute(func() (interface{}, error) {
		opts := options.Find()
		if sort != nil {
			opts.SetSort(sort)
		}
		cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)
		return nil, cursor.All(ctx, out)
	})
	return err
}

func (s *MongoStore) InsertOne(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error) {
	res, err := s.execute(func() (interface{}, error) {
		result, err := s.db.Collection(collection).InsertOne(ctx, doc)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrDuplicate
			}
			return nil, err
		}
		return result.InsertedID, nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.(primitive.ObjectID), nil
}

func (s *MongoStore) UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, update bson.M, out interface{}) error {
	_, err := s.execute(func() (interface{}, error) {
		filter := bson.M{"_id": id}
		if out == nil {
			result, err := s.db.Collection(collection).UpdateOne(ctx, filter, update)
			if err != nil {
				if mongo.IsDuplicateKeyError(err) {
					return nil, ErrDuplicate
				}
				return nil, err
			}
			if result.MatchedCount == 0 {
				return nil, ErrNotFound
			}
			return nil, nil
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err := s.db.Collection(collection).FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	})
	return err
}

func (s *MongoStore) UpdateWhere(ctx context.Context, collection string, filter, update bson.M) (int64, error) {
	res, err := s.execute(func() (interface{}, error) {
		result, err := s.db.Collection(collection).UpdateMany(ctx, filter, update)
		if err != nil {
			return nil, err
		}
		return result.MatchedCount, nil
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, collection string, id primitive.ObjectID) error {
	_, err := s.execute(func() (interface{}, error) {
		result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if result.DeletedCount == 0 {
			return nil, ErrNotFound
		}
		return nil, nil
	})
	return err
}

func (s *MongoStore) CountWhere(ctx context.Context, collection string, filter bson.M) (int64, error) {
	res, err := s.execute(func() (interface{}, error) {
		return s.db.Collection(collection).CountDocuments(ctx, filter)
	})
	if err != nil {
		return 0, err
	}
	return res.(int64), nil
}

func (s *MongoStore) Aggregate(ctx context.Context, collection string, pipeline []bson.M, out interface{}) error {
	_, err := s.execute(func() (interface{}, error) {
		cursor, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)
		return nil, cursor.All(ctx, out)
	})
	return err
}
