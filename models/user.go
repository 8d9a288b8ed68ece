package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email                string             `bson:"email" json:"email"`
	Password             string             `bson:"password" json:"-"`
	FirstName            string             `bson:"first_name" json:"first_name"`
	LastName             string             `bson:"last_name" json:"last_name"`
	Admin                bool               `bson:"admin" json:"admin"`
	Active               bool               `bson:"active" json:"active"`
	Avatar               string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CurrentTaskDesc      *string            `bson:"current_task_desc,omitempty" json:"current_task_desc"`
	CurrentTaskDate      *string            `bson:"current_task_date,omitempty" json:"current_task_date"`
	CurrentTaskStartHour *string            `bson:"current_task_start_hour,omitempty" json:"current_task_start_hour"`
}

// PublicUser is the projection returned to other users: never the password,
// and the admin flag only when the caller is an admin.
type PublicUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Admin     *bool              `bson:"admin,omitempty" json:"admin,omitempty"`
	Active    bool               `bson:"active" json:"active"`
	Avatar    string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

func (u User) Public(includeAdmin bool) PublicUser {
	p := PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Active:    u.Active,
		Avatar:    u.Avatar,
	}
	if includeAdmin {
		admin := u.Admin
		p.Admin = &admin
	}
	return p
}
