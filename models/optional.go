package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OptionalID distinguishes the three states a reference field can take in an
// update payload: absent (no change), null (detach) and a hex object id.
type OptionalID struct {
	Present bool
	ID      *primitive.ObjectID
}

// SomeID is a present OptionalID holding the given id.
func SomeID(id primitive.ObjectID) OptionalID {
	return OptionalID{Present: true, ID: &id}
}

// NullID is a present OptionalID holding null (detach).
func NullID() OptionalID {
	return OptionalID{Present: true}
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.ID = nil
		return nil
	}
	var hex string
	if err := json.Unmarshal(data, &hex); err != nil {
		return err
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return fmt.Errorf("invalid object id %q: %w", hex, err)
	}
	o.ID = &id
	return nil
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.Present || o.ID == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.ID.Hex())
}

// OptionalString is the same tri-state for nullable string fields such as
// the user's current-task snapshot.
type OptionalString struct {
	Present bool
	Value   *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
