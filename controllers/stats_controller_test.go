package controllers

import (
	"testing"
	"time"

	"ecolens/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestComputeHabitAnalytics(t *testing.T) {
	userID := primitive.NewObjectID()
	now := time.Date(2026, 8, 15, 18, 0, 0, 0, time.UTC)

	detections := []models.Detection{
		{UserID: userID, CreatedAt: now.Add(-1 * time.Hour)},                    // today, hour 17
		{UserID: userID, CreatedAt: now.Add(-2 * time.Hour)},                    // today, hour 16
		{UserID: userID, CreatedAt: now.AddDate(0, 0, -2).Add(-1 * time.Hour)},  // two days ago
		{UserID: userID, CreatedAt: now.AddDate(0, 0, -10)},                     // outside the window
	}
	stats := &models.Stats{FavoriteMaterial: "plastic", StreakDays: 3}

	analytics := computeHabitAnalytics(userID, detections, stats, now)

	if analytics.FavoriteMaterial != "plastic" || analytics.CurrentStreakDays != 3 {
		t.Errorf("stats fields not carried over: %+v", analytics)
	}
	if len(analytics.WeeklyTrend) != 7 {
		t.Fatalf("weeklyTrend has %d buckets, want 7", len(analytics.WeeklyTrend))
	}
	if analytics.WeeklyTrend[6] != 2 {
		t.Errorf("today bucket = %d, want 2", analytics.WeeklyTrend[6])
	}
	if analytics.WeeklyTrend[4] != 1 {
		t.Errorf("two-days-ago bucket = %d, want 1", analytics.WeeklyTrend[4])
	}

	// 3 detections in the window / 7 days
	if diff := analytics.DetectionsPerDay - 3.0/7.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("detectionsPerDay = %f, want %f", analytics.DetectionsPerDay, 3.0/7.0)
	}
}

func TestComputeHabitAnalyticsEmpty(t *testing.T) {
	userID := primitive.NewObjectID()
	analytics := computeHabitAnalytics(userID, nil, &models.Stats{}, time.Now())

	if analytics.DetectionsPerDay != 0 {
		t.Errorf("detectionsPerDay = %f, want 0", analytics.DetectionsPerDay)
	}
	for i, count := range analytics.WeeklyTrend {
		if count != 0 {
			t.Errorf("weeklyTrend[%d] = %d, want 0", i, count)
		}
	}
}
