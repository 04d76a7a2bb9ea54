package model

import "time"

// User is the directory entry the gateway authenticates against.
// Credentials are out of scope; the gateway supplies the caller's id.
type User struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Username  string    `json:"username" bson:"username" validate:"required,min=3,max=50"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
