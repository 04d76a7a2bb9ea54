package model

import "time"

// RoomLock is an advisory lock document serializing booking admission
// per room. The lock id is derived from the room id, so the unique _id
// index makes the store the authority for mutual exclusion across
// service instances.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
