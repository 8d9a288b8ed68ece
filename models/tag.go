package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Tag struct {
	ID    primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name  string               `bson:"name" json:"name"`
	User  primitive.ObjectID   `bson:"user" json:"user"`
	Tasks []primitive.ObjectID `bson:"tasks" json:"tasks"`
}
