package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User defines a user entity
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	PasswordHash   string             `bson:"passwordHash,omitempty" json:"-"`
	ExternalAuthID string             `bson:"externalAuthId,omitempty" json:"externalAuthId,omitempty"`
	Coins          int                `bson:"coins" json:"coins"`
	LifetimeEarned int                `bson:"lifetimeEarned" json:"lifetimeEarned"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
