package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UUID            string             `bson:"uuid" json:"uuid"`
	Username        string             `bson:"username" json:"username"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password" json:"-"`
	Role            string             `bson:"role" json:"role"` // basic, admin
	Avatar          string             `bson:"avatar" json:"avatar"`
	Company         string             `bson:"company" json:"company"`
	JobTitle        string             `bson:"jobTitle" json:"jobTitle"`
	SelfDescription string             `bson:"selfDescription" json:"selfDescription"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
