package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Achievement records a threshold unlock. Each (user, title) pair is
// created at most once; eligibility is derived from Stats.
type Achievement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Category    string             `bson:"category" json:"category"` // "detections", "coins", "streak", "material"
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	UnlockedAt  time.Time          `bson:"unlockedAt" json:"unlockedAt"`
}
