package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"ecolens/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetStats returns the user's rolling counters
func GetStats(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := store.GetStats(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stats not found"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetAchievements returns the user's persisted unlocks, newest first
func GetAchievements(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	achievements, err := store.GetUserAchievements(ctx, userID)
	if err != nil {
		log.Printf("Error fetching achievements: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch achievements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"achievements": achievements})
}

// GetHabitAnalytics computes dashboard aggregates from the detection history
func GetHabitAnalytics(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	detections, err := store.GetUserDetections(ctx, userID)
	if err != nil {
		log.Printf("Error fetching detections: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute analytics"})
		return
	}
	stats, err := store.GetStats(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stats not found"})
		return
	}

	c.JSON(http.StatusOK, computeHabitAnalytics(userID, detections, stats, time.Now()))
}

// computeHabitAnalytics folds the last week of detections into the dashboard
// aggregate. weeklyTrend[6] is today, weeklyTrend[0] six days ago.
func computeHabitAnalytics(userID primitive.ObjectID, detections []models.Detection, stats *models.Stats, now time.Time) models.HabitAnalytics {
	analytics := models.HabitAnalytics{
		UserID:            userID,
		FavoriteMaterial:  stats.FavoriteMaterial,
		CurrentStreakDays: stats.StreakDays,
		WeeklyTrend:       make([]int, 7),
	}

	hourCounts := make(map[int]int)
	weekAgo := now.AddDate(0, 0, -7)
	weekCount := 0

	for _, d := range detections {
		if d.CreatedAt.Before(weekAgo) {
			continue
		}
		weekCount++
		hourCounts[d.CreatedAt.Hour()]++

		daysAgo := int(now.Sub(d.CreatedAt).Hours() / 24)
		if daysAgo >= 0 && daysAgo < 7 {
			analytics.WeeklyTrend[6-daysAgo]++
		}
	}

	analytics.DetectionsPerDay = float64(weekCount) / 7.0

	bestHour, bestCount := 0, 0
	for hour, count := range hourCounts {
		if count > bestCount {
			bestHour, bestCount = hour, count
		}
	}
	analytics.MostActiveHour = bestHour

	return analytics
}
