package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Desc      string               `bson:"desc" json:"desc"`
	Date      string               `bson:"date" json:"date"`
	StartHour string               `bson:"start_hour" json:"start_hour"`
	EndHour   string               `bson:"end_hour" json:"end_hour"`
	HourValue float64              `bson:"hour_value" json:"hour_value"`
	User      primitive.ObjectID   `bson:"user" json:"user"`
	Project   *primitive.ObjectID  `bson:"project" json:"project"`
	Tags      []primitive.ObjectID `bson:"tags" json:"tags"`
}

// TaskDetail is a task with its references populated for responses.
type TaskDetail struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Desc      string             `bson:"desc" json:"desc"`
	Date      string             `bson:"date" json:"date"`
	StartHour string             `bson:"start_hour" json:"start_hour"`
	EndHour   string             `bson:"end_hour" json:"end_hour"`
	HourValue float64            `bson:"hour_value" json:"hour_value"`
	User      *PublicUser        `json:"user,omitempty"`
	Project   *Project           `json:"project"`
	Tags      []Tag              `json:"tags"`
}
