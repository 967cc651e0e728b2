package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a customer or admin account. Role is "user" or "admin";
// every elevated operation re-checks the role server-side.
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name              string             `bson:"name" json:"name"`
	Email             string             `bson:"email" json:"email"`
	Password          string             `bson:"password,omitempty" json:"-"`
	Role              string             `bson:"role" json:"role"`
	IsVerified        bool               `bson:"is_verified" json:"is_verified"`
	VerificationToken string             `bson:"verification_token" json:"-"`
}

// IsAdmin reports whether the account carries the elevated role.
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
