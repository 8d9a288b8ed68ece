package store

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type doc struct {
	ID    primitive.ObjectID   `bson:"_id,omitempty"`
	Name  string               `bson:"name"`
	Items []primitive.ObjectID `bson:"items"`
}

func TestMemoryStore_InsertAndFindByID(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	id, err := st.InsertOne(ctx, Tags, doc{Name: "alpha", Items: []primitive.ObjectID{}})
	if err != nil {
		t.Fatalf("InsertOne: %v", err)
	}
	if id.IsZero() {
		t.Fatalf("expected a generated id")
	}

	var got doc
	if err := st.FindByID(ctx, Tags, id, &got); err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Name != "alpha" {
		t.Fatalf("name = %q, want alpha", got.Name)
	}

	if err := st.FindByID(ctx, Tags, primitive.NewObjectID(), &got); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_PushPullOperators(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	id, err := st.InsertOne(ctx, Tags, doc{Name: "alpha", Items: []primitive.ObjectID{}})
	if err != nil {
		t.Fatalf("InsertOne: %v", err)
	}

	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	if err := st.UpdateByID(ctx, Tags, id, bson.M{"$push": bson.M{"items": bson.M{"$each": []primitive.ObjectID{a, b}}}}, nil); err != nil {
		t.Fatalf("$push $each: %v", err)
	}
	// $addToSet must not duplicate an existing element.
	if err := st.UpdateByID(ctx, Tags, id, bson.M{"$addToSet": bson.M{"items": a}}, nil); err != nil {
		t.Fatalf("$addToSet: %v", err)
	}

	var got doc
	if err := st.FindByID(ctx, Tags, id, &got); err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %v, want exactly [a b]", got.Items)
	}

	if err := st.UpdateByID(ctx, Tags, id, bson.M{"$pull": bson.M{"items": a}}, &got); err != nil {
		t.Fatalf("$pull: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0] != b {
		t.Fatalf("items after pull = %v, want [b]", got.Items)
	}

	if err := st.UpdateByID(ctx, Tags, id, bson.M{"$pullAll": bson.M{"items": []primitive.ObjectID{a, b}}}, &got); err != nil {
		t.Fatalf("$pullAll: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("items after pullAll = %v, want empty", got.Items)
	}
}

func TestMemoryStore_ArrayContainsAndInFilters(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	member := primitive.NewObjectID()
	id1, _ := st.InsertOne(ctx, Tasks, doc{Name: "one", Items: []primitive.ObjectID{member}})
	_, _ = st.InsertOne(ctx, Tasks, doc{Name: "two", Items: []primitive.ObjectID{}})

	// Scalar equality against an array field means "contains".
	count, err := st.CountWhere(ctx, Tasks, bson.M{"items": member})
	if err != nil {
		t.Fatalf("CountWhere: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	matched, err := st.UpdateWhere(ctx, Tasks, bson.M{"_id": bson.M{"$in": []primitive.ObjectID{id1}}}, bson.M{"$set": bson.M{"name": "renamed"}})
	if err != nil {
		t.Fatalf("UpdateWhere: %v", err)
	}
	if matched != 1 {
		t.Fatalf("matched = %d, want 1", matched)
	}

	var others []doc
	if err := st.FindWhere(ctx, Tasks, bson.M{"name": bson.M{"$ne": "renamed"}}, nil, &others); err != nil {
		t.Fatalf("FindWhere: %v", err)
	}
	if len(others) != 1 || others[0].Name != "two" {
		t.Fatalf("others = %+v, want just the doc named two", others)
	}
}

func TestMemoryStore_UniqueEmail(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	if _, err := st.InsertOne(ctx, Users, bson.M{"email": "dup@example.com"}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := st.InsertOne(ctx, Users, bson.M{"email": "dup@example.com"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemoryStore_AggregateDistinctCount(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	for _, date := range []string{"2019-06-10", "2019-06-10", "2019-06-11", "2019-06-12"} {
		if _, err := st.InsertOne(ctx, Tasks, bson.M{"date": date, "kind": "work"}); err != nil {
			t.Fatalf("InsertOne: %v", err)
		}
	}
	if _, err := st.InsertOne(ctx, Tasks, bson.M{"date": "2019-06-13", "kind": "other"}); err != nil {
		t.Fatalf("InsertOne: %v", err)
	}

	pipeline := []bson.M{
		{"$match": bson.M{"kind": "work"}},
		{"$group": bson.M{"_id": "$date"}},
		{"$count": "count"},
	}
	var out []struct {
		Count int64 `bson:"count"`
	}
	if err := st.Aggregate(ctx, Tasks, pipeline, &out); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(out) != 1 || out[0].Count != 3 {
		t.Fatalf("distinct count = %+v, want [{3}]", out)
	}
}

func TestMemoryStore_SortDescending(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"b", "a", "c"} {
		if _, err := st.InsertOne(ctx, Tags, doc{Name: name, Items: []primitive.ObjectID{}}); err != nil {
			t.Fatalf("InsertOne: %v", err)
		}
	}
	var got []doc
	if err := st.FindWhere(ctx, Tags, bson.M{}, bson.D{{Key: "name", Value: -1}}, &got); err != nil {
		t.Fatalf("FindWhere: %v", err)
	}
	if got[0].Name != "c" || got[1].Name != "b" || got[2].Name != "a" {
		t.Fatalf("sorted names = %v, want [c b a]", []string{got[0].Name, got[1].Name, got[2].Name})
	}
}
