package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"ecolens/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrDuplicate         = errors.New("duplicate record")
)

// Store abstracts the record store. Two implementations exist: an in-process
// map store (non-persistent, single process) and a MongoDB-backed store.
// Callers must tolerate either. Coin balances are only ever mutated through
// UpdateUserCoins so the balance and the transaction ledger cannot drift apart
// through side channels.
type Store interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateUser assigns an ID, rejects duplicate username/email and seeds a
	// zeroed Stats row for the new user.
	CreateUser(ctx context.Context, user *models.User) error
	// UpdateUserCoins applies an additive delta to the balance. Positive
	// deltas also bump LifetimeEarned by the same amount. A delta that would
	// drive the balance negative fails with ErrInsufficientCoins and leaves
	// the record untouched.
	UpdateUserCoins(ctx context.Context, userID primitive.ObjectID, delta int) (*models.User, error)

	CreateDetection(ctx context.Context, d *models.Detection) error
	GetDetection(ctx context.Context, id primitive.ObjectID) (*models.Detection, error)
	// GetUserDetections returns the user's detections newest first.
	GetUserDetections(ctx context.Context, userID primitive.ObjectID) ([]models.Detection, error)
	UpdateDetectionVerification(ctx context.Context, id primitive.ObjectID, status string, attempts, fraudScore int, verifiedAt *time.Time) error

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	// GetUserTransactions returns the user's ledger entries newest first.
	GetUserTransactions(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error)

	GetStats(ctx context.Context, userID primitive.ObjectID) (*models.Stats, error)
	// RecordDetectionStats folds one credited detection into the rolling
	// counters and returns the updated row.
	RecordDetectionStats(ctx context.Context, userID primitive.ObjectID, items []models.DetectedItem, coins int, at time.Time) (*models.Stats, error)
	RecordSpendStats(ctx context.Context, userID primitive.ObjectID, amount int) error

	CreateAchievement(ctx context.Context, a *models.Achievement) error
	GetUserAchievements(ctx context.Context, userID primitive.ObjectID) ([]models.Achievement, error)
	HasAchievement(ctx context.Context, userID primitive.ObjectID, title string) (bool, error)

	CreateGoal(ctx context.Context, g *models.PersonalGoal) error
	GetUserGoals(ctx context.Context, userID primitive.ObjectID) ([]models.PersonalGoal, error)
	UpdateGoalProgress(ctx context.Context, id primitive.ObjectID, progress int, completed bool) error

	GetImpact(ctx context.Context, userID primitive.ObjectID) (*models.EnvironmentalImpact, error)
	AddImpact(ctx context.Context, userID primitive.ObjectID, delta models.EnvironmentalImpact) error

	CreateReminder(ctx context.Context, r *models.UserReminder) error
	GetUserReminders(ctx context.Context, userID primitive.ObjectID) ([]models.UserReminder, error)
	UpdateReminder(ctx context.Context, id primitive.ObjectID, enabled bool) error
	DeleteReminder(ctx context.Context, id primitive.ObjectID) error

	// Admin listings, newest first, capped at limit.
	ListUsers(ctx context.Context, limit int) ([]models.User, error)
	ListDetections(ctx context.Context, limit int) ([]models.Detection, error)
	ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
}

// applyDetection folds one credited detection into a stats row. Shared by
// both store implementations so the counters stay consistent across backends.
func applyDetection(s *models.Stats, items []models.DetectedItem, coins int, at time.Time) {
	s.TotalDetections++
	s.TotalCoinsEarned += coins

	for _, item := range items {
		switch materialBucket(item.Material, item.Name) {
		case "plastic":
			s.PlasticCount++
		case "paper":
			s.PaperCount++
		case "glass":
			s.GlassCount++
		case "metal":
			s.MetalCount++
		}
	}

	if s.LastDetectionAt == nil {
		s.StreakDays = 1
	} else {
		last := s.LastDetectionAt.Truncate(24 * time.Hour)
		today := at.Truncate(24 * time.Hour)
		switch today.Sub(last) {
		case 0:
			// same day, streak unchanged
		case 24 * time.Hour:
			s.StreakDays++
		default:
			s.StreakDays = 1
		}
	}
	t := at
	s.LastDetectionAt = &t

	s.FavoriteMaterial = favoriteMaterial(s)
}

func materialBucket(material, name string) string {
	for _, probe := range []string{material, name} {
		switch {
		case containsFold(probe, "plastic"):
			return "plastic"
		case containsFold(probe, "paper") || containsFold(probe, "cardboard"):
			return "paper"
		case containsFold(probe, "glass"):
			return "glass"
		case containsFold(probe, "metal") || containsFold(probe, "aluminum") || containsFold(probe, "tin") || containsFold(probe, "steel"):
			return "metal"
		}
	}
	return ""
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

func favoriteMaterial(s *models.Stats) string {
	best, bestCount := "", 0
	for _, c := range []struct {
		name  string
		count int
	}{
		{"plastic", s.PlasticCount},
		{"paper", s.PaperCount},
		{"glass", s.GlassCount},
		{"metal", s.MetalCount},
	} {
		if c.count > bestCount {
			best, bestCount = c.name, c.count
		}
	}
	return best
}
