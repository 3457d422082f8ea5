package services

import (
	"context"
	"errors"
	"log"
	"time"

	"ecolens/models"
	"ecolens/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// achievementRule ties a persisted unlock to a stats threshold.
type achievementRule struct {
	category    string
	title       string
	description string
	satisfied   func(s *models.Stats) bool
}

var achievementRules = []achievementRule{
	{"detections", "First Steps", "Complete your first detection", func(s *models.Stats) bool { return s.TotalDetections >= 1 }},
	{"detections", "Getting Green", "Complete 10 detections", func(s *models.Stats) bool { return s.TotalDetections >= 10 }},
	{"detections", "Eco Warrior", "Complete 100 detections", func(s *models.Stats) bool { return s.TotalDetections >= 100 }},
	{"coins", "Coin Collector", "Earn 100 Green Coins", func(s *models.Stats) bool { return s.TotalCoinsEarned >= 100 }},
	{"coins", "Green Tycoon", "Earn 500 Green Coins", func(s *models.Stats) bool { return s.TotalCoinsEarned >= 500 }},
	{"streak", "Week Streak", "Detect waste 7 days in a row", func(s *models.Stats) bool { return s.StreakDays >= 7 }},
	{"material", "Plastic Hunter", "Recycle 50 plastic items", func(s *models.Stats) bool { return s.PlasticCount >= 50 }},
	{"material", "Glass Act", "Recycle 25 glass items", func(s *models.Stats) bool { return s.GlassCount >= 25 }},
}

// EvaluateAchievements unlocks any newly satisfied thresholds for the user
// and returns them. Already-unlocked achievements are skipped; unlock
// persistence failures are logged but do not fail the reward pipeline.
func EvaluateAchievements(ctx context.Context, store storage.Store, userID primitive.ObjectID, stats *models.Stats) []models.Achievement {
	var unlocked []models.Achievement
	for _, rule := range achievementRules {
		if !rule.satisfied(stats) {
			continue
		}
		has, err := store.HasAchievement(ctx, userID, rule.title)
		if err != nil || has {
			continue
		}
		achievement := models.Achievement{
			UserID:      userID,
			Category:    rule.category,
			Title:       rule.title,
			Description: rule.description,
			UnlockedAt:  time.Now(),
		}
		if err := store.CreateAchievement(ctx, &achievement); err != nil {
			if !errors.Is(err, storage.ErrDuplicate) {
				log.Printf("Error persisting achievement %q: %v", rule.title, err)
			}
			continue
		}
		unlocked = append(unlocked, achievement)
	}
	return unlocked
}
