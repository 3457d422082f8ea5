package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecolens/models"
)

func newTestUser(t *testing.T, store *MemoryStore, username string) *models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", CreatedAt: time.Now()}
	if err := store.CreateUser(context.Background(), &user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return &user
}

func TestCreateUserSeedsStats(t *testing.T) {
	store := NewMemoryStore()
	user := newTestUser(t, store, "alice")

	stats, err := store.GetStats(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalDetections != 0 || stats.TotalCoinsEarned != 0 {
		t.Errorf("new stats row not zeroed: %+v", stats)
	}
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	store := NewMemoryStore()
	newTestUser(t, store, "alice")

	dup := models.User{Username: "alice", Email: "other@example.com"}
	if err := store.CreateUser(context.Background(), &dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate username: got %v, want ErrDuplicate", err)
	}

	dup = models.User{Username: "other", Email: "alice@example.com"}
	if err := store.CreateUser(context.Background(), &dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: got %v, want ErrDuplicate", err)
	}
}

func TestUpdateUserCoinsEarn(t *testing.T) {
	store := NewMemoryStore()
	user := newTestUser(t, store, "alice")
	ctx := context.Background()

	updated, err := store.UpdateUserCoins(ctx, user.ID, 15)
	if err != nil {
		t.Fatalf("UpdateUserCoins failed: %v", err)
	}
	if updated.Coins != 15 {
		t.Errorf("balance = %d, want 15", updated.Coins)
	}
	if updated.LifetimeEarned != 15 {
		t.Errorf("lifetimeEarned = %d, want 15", updated.LifetimeEarned)
	}
}

func TestUpdateUserCoinsSpend(t *testing.T) {
	store := NewMemoryStore()
	user := newTestUser(t, store, "alice")
	ctx := context.Background()

	store.UpdateUserCoins(ctx, user.ID, 100)
	updated, err := store.UpdateUserCoins(ctx, user.ID, -40)
	if err != nil {
		t.Fatalf("UpdateUserCoins failed: %v", err)
	}
	if updated.Coins != 60 {
		t.Errorf("balance = %d, want 60", updated.Coins)
	}
	// spending never touches the lifetime counter
	if updated.LifetimeEarned != 100 {
		t.Errorf("lifetimeEarned = %d, want 100", updated.LifetimeEarned)
	}
}

func TestUpdateUserCoinsRejectsOverdraft(t *testing.T) {
	store := NewMemoryStore()
	user := newTestUser(t, store, "alice")
	ctx := context.Background()

	store.UpdateUserCoins(ctx, user.ID, 40)
	if _, err := store.UpdateUserCoins(ctx, user.ID, -50); !errors.Is(err, ErrInsufficientCoins) {
		t.Fatalf("overdraft: got %v, want ErrInsufficientCoins", err)
	}

	// failed debit must leave the record untouched
	current, _ := store.GetUserByID(ctx, user.ID)
	if current.Coins != 40 || current.LifetimeEarned != 40 {
		t.Errorf("balance mutated by failed debit: %+v", current)
	}
}

func TestGetUserTransactionsNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	user := newTestUser(t, store, "alice")
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		tx := models.Transaction{
			UserID:    user.ID,
			Type:      models.TransactionEarn,
			Amount:    i + 1,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.CreateTransaction(ctx, &tx); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
	}

	transactions, err := store.GetUserTransactions(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserTransactions failed: %v", err)
	}
	if len(transactions) != 5 {
		t.Fatalf("got %d transactions, want 5", len(transactions))
	}
	for i := 1; i < len(transactions); i++ {
		if transactions[i].CreatedAt.After(transactions[i-1].CreatedAt) {
			t.Fatalf("transactions not sorted newest first at index %d", i)
		}
	}
}

func TestUpdateDetectionVerification(t *testing.T) {
	store := NewMemoryStore()
	user := newTestUser(t, store, "alice")
	ctx := context.Background()

	detection := models.Detection{
		UserID:            user.ID,
		Status:            models.DetectionStatusPending,
		NeedsVerification: true,
		CreatedAt:         time.Now(),
	}
	if err := store.CreateDetection(ctx, &detection); err != nil {
		t.Fatalf("CreateDetection failed: %v", err)
	}

	now := time.Now()
	if err := store.UpdateDetectionVerification(ctx, detection.ID, models.DetectionStatusVerified, 2, 35, &now); err != nil {
		t.Fatalf("UpdateDetectionVerification failed: %v", err)
	}

	stored, err := store.GetDetection(ctx, detection.ID)
	if err != nil {
		t.Fatalf("GetDetection failed: %v", err)
	}
	if stored.Status != models.DetectionStatusVerified || stored.Attempts != 2 || stored.FraudScore != 35 {
		t.Errorf("verification fields not persisted: %+v", stored)
	}
	if stored.VerifiedAt == nil {
		t.Error("verifiedAt not persisted")
	}
}

func TestRecordDetectionStats(t *testing.T) {
	store := NewMemoryStore()
	user := newTestUser(t, store, "alice")
	ctx := context.Background()

	items := []models.DetectedItem{
		{Name: "Plastic Bottle", Material: "plastic", Category: "recyclable", Coins: 15},
		{Name: "Glass Jar", Material: "glass", Category: "recyclable", Coins: 12},
	}

	stats, err := store.RecordDetectionStats(ctx, user.ID, items, 27, time.Now())
	if err != nil {
		t.Fatalf("RecordDetectionStats failed: %v", err)
	}
	if stats.TotalDetections != 1 {
		t.Errorf("totalDetections = %d, want 1", stats.TotalDetections)
	}
	if stats.TotalCoinsEarned != 27 {
		t.Errorf("totalCoinsEarned = %d, want 27", stats.TotalCoinsEarned)
	}
	if stats.PlasticCount != 1 || stats.GlassCount != 1 {
		t.Errorf("material counts wrong: %+v", stats)
	}
	if stats.StreakDays != 1 {
		t.Errorf("streakDays = %d, want 1", stats.StreakDays)
	}
	if stats.LastDetectionAt == nil {
		t.Error("lastDetectionAt not set")
	}
}

func TestStreakProgression(t *testing.T) {
	stats := &models.Stats{}
	day := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	items := []models.DetectedItem{{Name: "Plastic Bottle", Material: "plastic"}}

	applyDetection(stats, items, 10, day)
	if stats.StreakDays != 1 {
		t.Fatalf("streak = %d after first day, want 1", stats.StreakDays)
	}

	// same day: unchanged
	applyDetection(stats, items, 10, day.Add(2*time.Hour))
	if stats.StreakDays != 1 {
		t.Errorf("streak = %d after same-day detection, want 1", stats.StreakDays)
	}

	// next day: extends
	applyDetection(stats, items, 10, day.AddDate(0, 0, 1))
	if stats.StreakDays != 2 {
		t.Errorf("streak = %d after consecutive day, want 2", stats.StreakDays)
	}

	// gap: resets
	applyDetection(stats, items, 10, day.AddDate(0, 0, 5))
	if stats.StreakDays != 1 {
		t.Errorf("streak = %d after gap, want 1", stats.StreakDays)
	}
}

func TestFavoriteMaterial(t *testing.T) {
	stats := &models.Stats{}
	now := time.Now()

	applyDetection(stats, []models.DetectedItem{{Name: "Glass Jar", Material: "glass"}}, 12, now)
	applyDetection(stats, []models.DetectedItem{{Name: "Glass Bottle", Material: "glass"}}, 12, now)
	applyDetection(stats, []models.DetectedItem{{Name: "Plastic Bottle", Material: "plastic"}}, 15, now)

	if stats.FavoriteMaterial != "glass" {
		t.Errorf("favoriteMaterial = %q, want glass", stats.FavoriteMaterial)
	}
}

func TestListTransactionsLimit(t *testing.T) {
	store := NewMemoryStore()
	user := newTestUser(t, store, "alice")
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		store.CreateTransaction(ctx, &models.Transaction{UserID: user.ID, Type: models.TransactionEarn, Amount: 1})
	}

	listed, err := store.ListTransactions(ctx, 3)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(listed) != 3 {
		t.Errorf("got %d transactions, want limit 3", len(listed))
	}
}
