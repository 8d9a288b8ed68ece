// Package store exposes the document-store contract the services depend on.
// Two implementations exist: MongoStore for the real database and MemoryStore
// for tests. Services never touch driver collections directly.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	Users    = "users"
	Tasks    = "tasks"
	Projects = "projects"
	Tags     = "tags"
)

var (
	// ErrNotFound is returned when no document matches the given id.
	ErrNotFound = errors.New("store: document not found")
	// ErrDuplicate is returned on a uniqueness-constraint violation.
	ErrDuplicate = errors.New("store: duplicate key")
)

type Store interface {
	// FindByID decodes the document with the given id into out.
	FindByID(ctx context.Context, collection string, id primitive.ObjectID, out interface{}) error
	// FindWhere decodes every matching document into out, a pointer to a
	// slice. A nil sort keeps store order.
	FindWhere(ctx context.Context, collection string, filter bson.M, sort bson.D, out interface{}) error
	// InsertOne stores the document and returns its generated id.
	InsertOne(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error)
	// UpdateByID applies an update document to one document. When out is
	// non-nil the post-update document is decoded into it.
	UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, update bson.M, out interface{}) error
	// UpdateWhere applies an update document to every matching document and
	// returns how many matched.
	UpdateWhere(ctx context.Context, collection string, filter, update bson.M) (int64, error)
	DeleteByID(ctx context.Context, collection string, id primitive.ObjectID) error
	CountWhere(ctx context.Context, collection string, filter bson.M) (int64, error)
	// Aggregate runs a pipeline and decodes the result set into out.
	Aggregate(ctx context.Context, collection string, pipeline []bson.M, out interface{}) error
}
