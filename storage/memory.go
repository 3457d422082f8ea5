package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecolens/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is the in-process Store implementation. State lives in maps
// guarded by a single mutex and is lost on restart.
type MemoryStore struct {
	mu           sync.Mutex
	users        map[primitive.ObjectID]*models.User
	detections   map[primitive.ObjectID]*models.Detection
	transactions []*models.Transaction
	stats        map[primitive.ObjectID]*models.Stats
	achievements []*models.Achievement
	goals        map[primitive.ObjectID]*models.PersonalGoal
	impacts      map[primitive.ObjectID]*models.EnvironmentalImpact
	reminders    map[primitive.ObjectID]*models.UserReminder
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[primitive.ObjectID]*models.User),
		detections: make(map[primitive.ObjectID]*models.Detection),
		stats:      make(map[primitive.ObjectID]*models.Stats),
		goals:      make(map[primitive.ObjectID]*models.PersonalGoal),
		impacts:    make(map[primitive.ObjectID]*models.EnvironmentalImpact),
		reminders:  make(map[primitive.ObjectID]*models.UserReminder),
	}
}

func (m *MemoryStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	copied := *user
	m.users[user.ID] = &copied
	m.stats[user.ID] = &models.Stats{ID: primitive.NewObjectID(), UserID: user.ID}
	return nil
}

func (m *MemoryStore) UpdateUserCoins(_ context.Context, userID primitive.ObjectID, delta int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if user.Coins+delta < 0 {
		return nil, ErrInsufficientCoins
	}
	user.Coins += delta
	if delta > 0 {
		user.LifetimeEarned += delta
	}
	copied := *user
	return &copied, nil
}

func (m *MemoryStore) CreateDetection(_ context.Context, d *models.Detection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	copied := *d
	m.detections[d.ID] = &copied
	return nil
}

func (m *MemoryStore) GetDetection(_ context.Context, id primitive.ObjectID) (*models.Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.detections[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *MemoryStore) GetUserDetections(_ context.Context, userID primitive.ObjectID) ([]models.Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Detection
	for _, d := range m.detections {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateDetectionVerification(_ context.Context, id primitive.ObjectID, status string, attempts, fraudScore int, verifiedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.detections[id]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	d.Attempts = attempts
	d.FraudScore = fraudScore
	if verifiedAt != nil {
		d.VerifiedAt = verifiedAt
	}
	return nil
}

func (m *MemoryStore) CreateTransaction(_ context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	copied := *t
	m.transactions = append(m.transactions, &copied)
	return nil
}

func (m *MemoryStore) GetUserTransactions(_ context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) GetStats(_ context.Context, userID primitive.ObjectID) (*models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[userID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *MemoryStore) RecordDetectionStats(_ context.Context, userID primitive.ObjectID, items []models.DetectedItem, coins int, at time.Time) (*models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[userID]
	if !ok {
		return nil, ErrNotFound
	}
	applyDetection(s, items, coins, at)
	copied := *s
	return &copied, nil
}

func (m *MemoryStore) RecordSpendStats(_ context.Context, userID primitive.ObjectID, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[userID]
	if !ok {
		return ErrNotFound
	}
	s.TotalCoinsSpent += amount
	return nil
}

func (m *MemoryStore) CreateAchievement(_ context.Context, a *models.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.achievements {
		if existing.UserID == a.UserID && existing.Title == a.Title {
			return ErrDuplicate
		}
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.UnlockedAt.IsZero() {
		a.UnlockedAt = time.Now()
	}
	copied := *a
	m.achievements = append(m.achievements, &copied)
	return nil
}

func (m *MemoryStore) GetUserAchievements(_ context.Context, userID primitive.ObjectID) ([]models.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Achievement
	for _, a := range m.achievements {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UnlockedAt.After(out[j].UnlockedAt) })
	return out, nil
}

func (m *MemoryStore) HasAchievement(_ context.Context, userID primitive.ObjectID, title string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.achievements {
		if a.UserID == userID && a.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) CreateGoal(_ context.Context, g *models.PersonalGoal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	copied := *g
	m.goals[g.ID] = &copied
	return nil
}

func (m *MemoryStore) GetUserGoals(_ context.Context, userID primitive.ObjectID) ([]models.PersonalGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PersonalGoal
	for _, g := range m.goals {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateGoalProgress(_ context.Context, id primitive.ObjectID, progress int, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[id]
	if !ok {
		return ErrNotFound
	}
	g.Progress = progress
	g.Completed = completed
	return nil
}

func (m *MemoryStore) GetImpact(_ context.Context, userID primitive.ObjectID) (*models.EnvironmentalImpact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	imp, ok := m.impacts[userID]
	if !ok {
		return &models.EnvironmentalImpact{UserID: userID}, nil
	}
	copied := *imp
	return &copied, nil
}

func (m *MemoryStore) AddImpact(_ context.Context, userID primitive.ObjectID, delta models.EnvironmentalImpact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	imp, ok := m.impacts[userID]
	if !ok {
		imp = &models.EnvironmentalImpact{ID: primitive.NewObjectID(), UserID: userID}
		m.impacts[userID] = imp
	}
	imp.CO2SavedKg += delta.CO2SavedKg
	imp.WaterSavedL += delta.WaterSavedL
	imp.EnergySaved += delta.EnergySaved
	imp.TreesSaved += delta.TreesSaved
	imp.ItemsDiverted += delta.ItemsDiverted
	imp.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) CreateReminder(_ context.Context, r *models.UserReminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	copied := *r
	m.reminders[r.ID] = &copied
	return nil
}

func (m *MemoryStore) GetUserReminders(_ context.Context, userID primitive.ObjectID) ([]models.UserReminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.UserReminder
	for _, r := range m.reminders {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateReminder(_ context.Context, id primitive.ObjectID, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[id]
	if !ok {
		return ErrNotFound
	}
	r.Enabled = enabled
	return nil
}

func (m *MemoryStore) DeleteReminder(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reminders[id]; !ok {
		return ErrNotFound
	}
	delete(m.reminders, id)
	return nil
}

func (m *MemoryStore) ListUsers(_ context.Context, limit int) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return capSlice(out, limit), nil
}

func (m *MemoryStore) ListDetections(_ context.Context, limit int) ([]models.Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Detection
	for _, d := range m.detections {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return capSlice(out, limit), nil
}

func (m *MemoryStore) ListTransactions(_ context.Context, limit int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Transaction, 0, len(m.transactions))
	for _, t := range m.transactions {
		out = append(out, *t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return capSlice(out, limit), nil
}

func capSlice[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
