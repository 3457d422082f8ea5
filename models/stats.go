package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stats holds rolling per-user counters, seeded zeroed at user creation
// and mutated additively after each credited detection.
type Stats struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	TotalDetections  int                `bson:"totalDetections" json:"totalDetections"`
	TotalCoinsEarned int                `bson:"totalCoinsEarned" json:"totalCoinsEarned"`
	TotalCoinsSpent  int                `bson:"totalCoinsSpent" json:"totalCoinsSpent"`
	PlasticCount     int                `bson:"plasticCount" json:"plasticCount"`
	PaperCount       int                `bson:"paperCount" json:"paperCount"`
	GlassCount       int                `bson:"glassCount" json:"glassCount"`
	MetalCount       int                `bson:"metalCount" json:"metalCount"`
	StreakDays       int                `bson:"streakDays" json:"streakDays"`
	FavoriteMaterial string             `bson:"favoriteMaterial" json:"favoriteMaterial"`
	LastDetectionAt  *time.Time         `bson:"lastDetectionAt,omitempty" json:"lastDetectionAt,omitempty"`
}
