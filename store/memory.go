package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore implements Store over in-process maps. It supports the subset
// of query and update operators the services actually use ($set, $push,
// $addToSet, $pull, $pullAll, $each, $in, $ne, $gte, $lte) plus the $match /
// $group / $sort / $count / $limit aggregation stages, with Mongo semantics
// (equality against an array field means "array contains").
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[primitive.ObjectID]bson.M
	unique      map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[primitive.ObjectID]bson.M),
		unique:      map[string][]string{Users: {"email"}},
	}
}

func (s *MemoryStore) coll(name string) map[primitive.ObjectID]bson.M {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[primitive.ObjectID]bson.M)
		s.collections[name] = c
	}
	return c
}

// toDoc normalizes any document into the generic form used for storage and
// matching (arrays as bson.A, ids as primitive.ObjectID and so on).
func toDoc(doc interface{}) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeInto(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func decodeSlice(docs []bson.M, out interface{}) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("store: out must be a pointer to a slice, got %T", out)
	}
	sl := v.Elem()
	sl.Set(reflect.MakeSlice(sl.Type(), 0, len(docs)))
	for _, d := range docs {
		elem := reflect.New(sl.Type().Elem())
		if err := decodeInto(d, elem.Interface()); err != nil {
			return err
		}
		sl.Set(reflect.Append(sl, elem.Elem()))
	}
	return nil
}

func normValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	if id, ok := v.(primitive.ObjectID); ok {
		return id
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return normValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		arr := make(bson.A, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			arr[i] = normValue(rv.Index(i).Interface())
		}
		return arr
	case reflect.Int:
		return int64(rv.Int())
	case reflect.Int32:
		return int64(rv.Int())
	case reflect.Int64:
		return rv.Int()
	}
	return v
}

func eq(a, b interface{}) bool {
	return reflect.DeepEqual(normValue(a), normValue(b))
}

// valueMatches follows Mongo equality: a scalar condition matches an array
// field when any element equals it.
func valueMatches(docVal, target interface{}) bool {
	if eq(docVal, target) {
		return true
	}
	if arr, ok := normValue(docVal).(bson.A); ok {
		for _, el := range arr {
			if eq(el, target) {
				return true
			}
		}
	}
	return false
}

func inList(docVal, list interface{}) bool {
	arr, ok := normValue(list).(bson.A)
	if !ok {
		return false
	}
	for _, el := range arr {
		if valueMatches(docVal, el) {
			return true
		}
	}
	return false
}

func compareValues(a, b interface{}) int {
	av, bv := normValue(a), normValue(b)
	switch x := av.(type) {
	case string:
		y, _ := bv.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case int64:
		y, _ := bv.(int64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case float64:
		y, _ := bv.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case primitive.DateTime:
		y, _ := bv.(primitive.DateTime)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return 0
}

func matchValue(docVal, cond interface{}) bool {
	if ops, ok := cond.(bson.M); ok {
		for op, arg := range ops {
			switch op {
			case "$in":
				if !inList(docVal, arg) {
					return false
				}
			case "$ne":
				if valueMatches(docVal, arg) {
					return false
				}
			case "$gte":
				if compareValues(docVal, arg) < 0 {
					return false
				}
			case "$lte":
				if compareValues(docVal, arg) > 0 {
					return false
				}
			default:
				return false
			}
		}
		return true
	}
	return valueMatches(docVal, cond)
}

func matches(doc bson.M, filter bson.M) bool {
	for field, cond := range filter {
		if !matchValue(doc[field], cond) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) find(collection string, filter bson.M) []bson.M {
	var out []bson.M
	for _, doc := range s.coll(collection) {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

func sortDocs(docs []bson.M, by bson.D) {
	if len(by) == 0 {
		// Deterministic order for tests even without an explicit sort.
		sort.Slice(docs, func(i, j int) bool {
			a, _ := docs[i]["_id"].(primitive.ObjectID)
			b, _ := docs[j]["_id"].(primitive.ObjectID)
			return a.Hex() < b.Hex()
		})
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range by {
			c := compareValues(docs[i][key.Key], docs[j][key.Key])
			if c == 0 {
				continue
			}
			order, _ := normValue(key.Value).(int64)
			if order < 0 {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func (s *MemoryStore) checkUnique(collection string, id primitive.ObjectID, doc bson.M) error {
	for _, field := range s.unique[collection] {
		val, ok := doc[field]
		if !ok {
			continue
		}
		for otherID, other := range s.coll(collection) {
			if otherID != id && eq(other[field], val) {
				return ErrDuplicate
			}
		}
	}
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, collection string, id primitive.ObjectID, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.coll(collection)[id]
	if !ok {
		return ErrNotFound
	}
	return decodeInto(doc, out)
}

func (s *MemoryStore) FindWhere(ctx context.Context, collection string, filter bson.M, sortBy bson.D, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.find(collection, filter)
	sortDocs(docs, sortBy)
	return decodeSlice(docs, out)
}

func (s *MemoryStore) InsertOne(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := toDoc(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := m["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		m["_id"] = id
	}
	if err := s.checkUnique(collection, id, m); err != nil {
		return primitive.NilObjectID, err
	}
	s.coll(collection)[id] = m
	return id, nil
}

func (s *MemoryStore) UpdateByID(ctx context.Context, collection string, id primitive.ObjectID, update bson.M, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.coll(collection)[id]
	if !ok {
		return ErrNotFound
	}
	updated, err := applyUpdate(doc, update)
	if err != nil {
		return err
	}
	if err := s.checkUnique(collection, id, updated); err != nil {
		return err
	}
	s.coll(collection)[id] = updated
	if out != nil {
		return decodeInto(updated, out)
	}
	return nil
}

func (s *MemoryStore) UpdateWhere(ctx context.Context, collection string, filter, update bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched int64
	for id, doc := range s.coll(collection) {
		if !matches(doc, filter) {
			continue
		}
		updated, err := applyUpdate(doc, update)
		if err != nil {
			return matched, err
		}
		s.coll(collection)[id] = updated
		matched++
	}
	return matched, nil
}

func (s *MemoryStore) DeleteByID(ctx context.Context, collection string, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coll(collection)[id]; !ok {
		return ErrNotFound
	}
	delete(s.coll(collection), id)
	return nil
}

func (s *MemoryStore) CountWhere(ctx context.Context, collection string, filter bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.find(collection, filter))), nil
}

func (s *MemoryStore) Aggregate(ctx context.Context, collection string, pipeline []bson.M, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.find(collection, bson.M{})
	sortDocs(docs, nil)
	for _, stage := range pipeline {
		var err error
		docs, err = applyStage(docs, stage)
		if err != nil {
			return err
		}
	}
	return decodeSlice(docs, out)
}

func applyStage(docs []bson.M, stage bson.M) ([]bson.M, error) {
	for name, arg := range stage {
		switch name {
		case "$match":
			filter, ok := arg.(bson.M)
			if !ok {
				return nil, fmt.Errorf("store: $match expects a document, got %T", arg)
			}
			var kept []bson.M
			for _, d := range docs {
				if matches(d, filter) {
					kept = append(kept, d)
				}
			}
			return kept, nil
		case "$group":
			return applyGroup(docs, arg)
		case "$count":
			field, ok := arg.(string)
			if !ok {
				return nil, fmt.Errorf("store: $count expects a field name, got %T", arg)
			}
			return []bson.M{{field: int64(len(docs))}}, nil
		case "$sort":
			spec, ok := arg.(bson.D)
			if !ok {
				return nil, fmt.Errorf("store: $sort expects an ordered document, got %T", arg)
			}
			sorted := append([]bson.M(nil), docs...)
			sortDocs(sorted, spec)
			return sorted, nil
		case "$limit":
			n, _ := normValue(arg).(int64)
			if int64(len(docs)) > n {
				return docs[:n], nil
			}
			return docs, nil
		default:
			return nil, fmt.Errorf("store: unsupported pipeline stage %q", name)
		}
	}
	return docs, nil
}

func applyGroup(docs []bson.M, arg interface{}) ([]bson.M, error) {
	spec, ok := arg.(bson.M)
	if !ok {
		return nil, fmt.Errorf("store: $group expects a document, got %T", arg)
	}
	keyExpr, ok := spec["_id"].(string)
	if !ok || len(keyExpr) == 0 || keyExpr[0] != '$' {
		return nil, fmt.Errorf("store: $group only supports a field-path _id")
	}
	keyField := keyExpr[1:]
	groups := make(map[interface{}]bson.M)
	var order []interface{}
	for _, d := range docs {
		key := normValue(d[keyField])
		g, ok := groups[key]
		if !ok {
			g = bson.M{"_id": key}
			groups[key] = g
			order = append(order, key)
		}
		for field, accum := range spec {
			if field == "_id" {
				continue
			}
			acc, ok := accum.(bson.M)
			if !ok {
				return nil, fmt.Errorf("store: $group accumulator for %q must be a document", field)
			}
			sumArg, ok := acc["$sum"]
			if !ok {
				return nil, fmt.Errorf("store: only the $sum accumulator is supported")
			}
			prev, _ := normValue(g[field]).(int64)
			switch v := normValue(sumArg).(type) {
			case int64:
				g[field] = prev + v
			case string:
				if len(v) > 0 && v[0] == '$' {
					add, _ := normValue(d[v[1:]]).(int64)
					g[field] = prev + add
				}
			}
		}
	}
	out := make([]bson.M, 0, len(order))
	for _, key := range order {
		out = append(out, groups[key])
	}
	return out, nil
}

func applyUpdate(doc bson.M, update bson.M) (bson.M, error) {
	// Work on a copy so a failed unique check leaves the stored doc alone.
	updated, err := toDoc(doc)
	if err != nil {
		return nil, err
	}
	for op, arg := range update {
		fields, ok := arg.(bson.M)
		if !ok {
			return nil, fmt.Errorf("store: update operator %q expects a document, got %T", op, arg)
		}
		for field, val := range fields {
			switch op {
			case "$set":
				updated[field] = normValue(val)
			case "$push", "$addToSet":
				arr, _ := updated[field].(bson.A)
				items := bson.A{normValue(val)}
				if mod, ok := val.(bson.M); ok {
					if each, ok := mod["$each"]; ok {
						items, _ = normValue(each).(bson.A)
					}
				}
				for _, item := range items {
					if op == "$addToSet" && containsElem(arr, item) {
						continue
					}
					arr = append(arr, item)
				}
				updated[field] = arr
			case "$pull":
				updated[field] = removeElems(updated[field], bson.A{normValue(val)})
			case "$pullAll":
				list, _ := normValue(val).(bson.A)
				updated[field] = removeElems(updated[field], list)
			default:
				return nil, fmt.Errorf("store: unsupported update operator %q", op)
			}
		}
	}
	return updated, nil
}

func containsElem(arr bson.A, item interface{}) bool {
	for _, el := range arr {
		if eq(el, item) {
			return true
		}
	}
	return false
}

func removeElems(field interface{}, items bson.A) bson.A {
	arr, _ := field.(bson.A)
	kept := make(bson.A, 0, len(arr))
	for _, el := range arr {
		if !containsElem(items, el) {
			kept = append(kept, el)
		}
	}
	return kept
}
