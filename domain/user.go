package domain

import "time"

// User is a local account. Email is the immutable identity key and is
// stored lowercased. Username and HashedPassword are empty for accounts
// created through an external identity provider.
type User struct {
	ID             string    `bson:"_id,omitempty"             json:"id"`
	Username       string    `bson:"username,omitempty"        json:"username,omitempty"`
	Email          string    `bson:"email"                     json:"email"`
	FirstName      string    `bson:"first_name,omitempty"      json:"first_name,omitempty"`
	LastName       string    `bson:"last_name,omitempty"       json:"last_name,omitempty"`
	HashedPassword string    `bson:"hashed_password,omitempty" json:"-"`
	CreatedAt      time.Time `bson:"created_at"                json:"created_at"`
}
