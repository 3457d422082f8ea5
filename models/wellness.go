package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PersonalGoal is a user-defined target (e.g. "recycle 20 items this month")
type PersonalGoal struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Title     string             `bson:"title" json:"title"`
	Target    int                `bson:"target" json:"target"`
	Progress  int                `bson:"progress" json:"progress"`
	Deadline  *time.Time         `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Completed bool               `bson:"completed" json:"completed"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// EnvironmentalImpact aggregates estimated savings derived from detections
type EnvironmentalImpact struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	CO2SavedKg   float64            `bson:"co2SavedKg" json:"co2SavedKg"`
	WaterSavedL  float64            `bson:"waterSavedL" json:"waterSavedL"`
	EnergySaved  float64            `bson:"energySavedKwh" json:"energySavedKwh"`
	TreesSaved   float64            `bson:"treesSaved" json:"treesSaved"`
	ItemsDiverted int               `bson:"itemsDiverted" json:"itemsDiverted"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserReminder schedules a recurring nudge rendered by the client
type UserReminder struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Message   string             `bson:"message" json:"message"`
	TimeOfDay string             `bson:"timeOfDay" json:"timeOfDay"` // "HH:MM"
	Days      []string           `bson:"days" json:"days"`
	Enabled   bool               `bson:"enabled" json:"enabled"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// HabitAnalytics is a computed dashboard aggregate, not persisted per event
type HabitAnalytics struct {
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	DetectionsPerDay  float64            `bson:"detectionsPerDay" json:"detectionsPerDay"`
	MostActiveHour    int                `bson:"mostActiveHour" json:"mostActiveHour"`
	FavoriteMaterial  string             `bson:"favoriteMaterial" json:"favoriteMaterial"`
	CurrentStreakDays int                `bson:"currentStreakDays" json:"currentStreakDays"`
	WeeklyTrend       []int              `bson:"weeklyTrend" json:"weeklyTrend"`
}
