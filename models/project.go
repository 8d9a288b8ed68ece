package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Project struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Color     string               `bson:"color" json:"color"`
	CreatedOn time.Time            `bson:"created_on" json:"created_on"`
	Owner     primitive.ObjectID   `bson:"owner" json:"owner"`
	Members   []primitive.ObjectID `bson:"members" json:"members"`
	Tasks     []primitive.ObjectID `bson:"tasks" json:"tasks"`
}
