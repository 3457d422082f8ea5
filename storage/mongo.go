package storage

import (
	"context"
	"errors"
	"time"

	"ecolens/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the document-store-backed Store implementation.
type MongoStore struct {
	users        *mongo.Collection
	detections   *mongo.Collection
	transactions *mongo.Collection
	stats        *mongo.Collection
	achievements *mongo.Collection
	goals        *mongo.Collection
	impacts      *mongo.Collection
	reminders    *mongo.Collection
}

func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		users:        database.Collection("users"),
		detections:   database.Collection("detections"),
		transactions: database.Collection("transactions"),
		stats:        database.Collection("stats"),
		achievements: database.Collection("achievements"),
		goals:        database.Collection("goals"),
		impacts:      database.Collection("impacts"),
		reminders:    database.Collection("reminders"),
	}
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	count, err := s.users.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"username": user.Username},
		{"email": user.Email},
	}})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return err
	}
	_, err = s.stats.InsertOne(ctx, models.Stats{ID: primitive.NewObjectID(), UserID: user.ID})
	return err
}

func (s *MongoStore) UpdateUserCoins(ctx context.Context, userID primitive.ObjectID, delta int) (*models.User, error) {
	update := bson.M{"$inc": bson.M{"coins": delta}}
	if delta > 0 {
		update = bson.M{"$inc": bson.M{"coins": delta, "lifetimeEarned": delta}}
	}

	// The coins filter makes the debit conditional so a concurrent spend
	// cannot drive the balance negative.
	filter := bson.M{"_id": userID}
	if delta < 0 {
		filter["coins"] = bson.M{"$gte": -delta}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := s.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if delta < 0 {
				if _, lookupErr := s.GetUserByID(ctx, userID); lookupErr == nil {
					return nil, ErrInsufficientCoins
				}
			}
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) CreateDetection(ctx context.Context, d *models.Detection) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	_, err := s.detections.InsertOne(ctx, d)
	return err
}

func (s *MongoStore) GetDetection(ctx context.Context, id primitive.ObjectID) (*models.Detection, error) {
	var d models.Detection
	err := s.detections.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *MongoStore) GetUserDetections(ctx context.Context, userID primitive.ObjectID) ([]models.Detection, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.detections.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Detection
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateDetectionVerification(ctx context.Context, id primitive.ObjectID, status string, attempts, fraudScore int, verifiedAt *time.Time) error {
	set := bson.M{"status": status, "attempts": attempts, "fraudScore": fraudScore}
	if verifiedAt != nil {
		set["verifiedAt"] = verifiedAt
	}
	result, err := s.detections.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := s.transactions.InsertOne(ctx, t)
	return err
}

func (s *MongoStore) GetUserTransactions(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.transactions.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Transaction
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) GetStats(ctx context.Context, userID primitive.ObjectID) (*models.Stats, error) {
	var stats models.Stats
	err := s.stats.FindOne(ctx, bson.M{"userId": userID}).Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stats, nil
}

func (s *MongoStore) RecordDetectionStats(ctx context.Context, userID primitive.ObjectID, items []models.DetectedItem, coins int, at time.Time) (*models.Stats, error) {
	stats, err := s.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	applyDetection(stats, items, coins, at)
	_, err = s.stats.ReplaceOne(ctx, bson.M{"userId": userID}, stats)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *MongoStore) RecordSpendStats(ctx context.Context, userID primitive.ObjectID, amount int) error {
	result, err := s.stats.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$inc": bson.M{"totalCoinsSpent": amount}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateAchievement(ctx context.Context, a *models.Achievement) error {
	count, err := s.achievements.CountDocuments(ctx, bson.M{"userId": a.UserID, "title": a.Title})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.UnlockedAt.IsZero() {
		a.UnlockedAt = time.Now()
	}
	_, err = s.achievements.InsertOne(ctx, a)
	return err
}

func (s *MongoStore) GetUserAchievements(ctx context.Context, userID primitive.ObjectID) ([]models.Achievement, error) {
	opts := options.Find().SetSort(bson.M{"unlockedAt": -1})
	cursor, err := s.achievements.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Achievement
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) HasAchievement(ctx context.Context, userID primitive.ObjectID, title string) (bool, error) {
	count, err := s.achievements.CountDocuments(ctx, bson.M{"userId": userID, "title": title})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *MongoStore) CreateGoal(ctx context.Context, g *models.PersonalGoal) error {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	_, err := s.goals.InsertOne(ctx, g)
	return err
}

func (s *MongoStore) GetUserGoals(ctx context.Context, userID primitive.ObjectID) ([]models.PersonalGoal, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.goals.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.PersonalGoal
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateGoalProgress(ctx context.Context, id primitive.ObjectID, progress int, completed bool) error {
	result, err := s.goals.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"progress": progress, "completed": completed}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) GetImpact(ctx context.Context, userID primitive.ObjectID) (*models.EnvironmentalImpact, error) {
	var imp models.EnvironmentalImpact
	err := s.impacts.FindOne(ctx, bson.M{"userId": userID}).Decode(&imp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.EnvironmentalImpact{UserID: userID}, nil
		}
		return nil, err
	}
	return &imp, nil
}

func (s *MongoStore) AddImpact(ctx context.Context, userID primitive.ObjectID, delta models.EnvironmentalImpact) error {
	update := bson.M{
		"$inc": bson.M{
			"co2SavedKg":     delta.CO2SavedKg,
			"waterSavedL":    delta.WaterSavedL,
			"energySavedKwh": delta.EnergySaved,
			"treesSaved":     delta.TreesSaved,
			"itemsDiverted":  delta.ItemsDiverted,
		},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.impacts.UpdateOne(ctx, bson.M{"userId": userID}, update, opts)
	return err
}

func (s *MongoStore) CreateReminder(ctx context.Context, r *models.UserReminder) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	_, err := s.reminders.InsertOne(ctx, r)
	return err
}

func (s *MongoStore) GetUserReminders(ctx context.Context, userID primitive.ObjectID) ([]models.UserReminder, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.reminders.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.UserReminder
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) UpdateReminder(ctx context.Context, id primitive.ObjectID, enabled bool) error {
	result, err := s.reminders.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"enabled": enabled}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteReminder(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.reminders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) listCollection(ctx context.Context, coll *mongo.Collection, limit int, out interface{}) error {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func (s *MongoStore) ListUsers(ctx context.Context, limit int) ([]models.User, error) {
	var out []models.User
	if err := s.listCollection(ctx, s.users, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) ListDetections(ctx context.Context, limit int) ([]models.Detection, error) {
	var out []models.Detection
	if err := s.listCollection(ctx, s.detections, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	var out []models.Transaction
	if err := s.listCollection(ctx, s.transactions, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}
