package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"ecolens/models"
	"ecolens/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateGoalRequest defines a new personal goal
type CreateGoalRequest struct {
	Title    string     `json:"title" binding:"required"`
	Target   int        `json:"target" binding:"required,gt=0"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

func CreateGoal(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	goal := models.PersonalGoal{
		UserID:    userID,
		Title:     req.Title,
		Target:    req.Target,
		Deadline:  req.Deadline,
		CreatedAt: time.Now(),
	}
	if err := store.CreateGoal(ctx, &goal); err != nil {
		log.Printf("Error creating goal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create goal"})
		return
	}
	c.JSON(http.StatusOK, goal)
}

func GetGoals(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	goals, err := store.GetUserGoals(ctx, userID)
	if err != nil {
		log.Printf("Error fetching goals: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch goals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// UpdateGoalRequest advances a goal's progress
type UpdateGoalRequest struct {
	Progress int `json:"progress" binding:"min=0"`
}

func UpdateGoal(c *gin.Context) {
	goalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid goal id"})
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID := c.MustGet("userID").(primitive.ObjectID)
	goals, err := store.GetUserGoals(ctx, userID)
	if err != nil {
		log.Printf("Error fetching goals: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update goal"})
		return
	}
	var target *models.PersonalGoal
	for i := range goals {
		if goals[i].ID == goalID {
			target = &goals[i]
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Goal not found"})
		return
	}

	completed := req.Progress >= target.Target
	if err := store.UpdateGoalProgress(ctx, goalID, req.Progress, completed); err != nil {
		log.Printf("Error updating goal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update goal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": req.Progress, "completed": completed})
}

// GetImpact returns the user's environmental impact aggregate
func GetImpact(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	impact, err := store.GetImpact(ctx, userID)
	if err != nil {
		log.Printf("Error fetching impact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch impact"})
		return
	}
	c.JSON(http.StatusOK, impact)
}

// UpdateImpactRequest adds externally tracked savings (e.g. a community
// cleanup logged by the client) to the user's aggregate
type UpdateImpactRequest struct {
	CO2SavedKg    float64 `json:"co2SavedKg" binding:"min=0"`
	WaterSavedL   float64 `json:"waterSavedL" binding:"min=0"`
	EnergySaved   float64 `json:"energySavedKwh" binding:"min=0"`
	TreesSaved    float64 `json:"treesSaved" binding:"min=0"`
	ItemsDiverted int     `json:"itemsDiverted" binding:"min=0"`
}

// UpdateImpact applies an additive delta to the impact aggregate and returns
// the updated totals
func UpdateImpact(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	var req UpdateImpactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	delta := models.EnvironmentalImpact{
		CO2SavedKg:    req.CO2SavedKg,
		WaterSavedL:   req.WaterSavedL,
		EnergySaved:   req.EnergySaved,
		TreesSaved:    req.TreesSaved,
		ItemsDiverted: req.ItemsDiverted,
	}
	if err := store.AddImpact(ctx, userID, delta); err != nil {
		log.Printf("Error updating impact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update impact"})
		return
	}

	impact, err := store.GetImpact(ctx, userID)
	if err != nil {
		log.Printf("Error fetching impact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch impact"})
		return
	}
	c.JSON(http.StatusOK, impact)
}

// CreateReminderRequest schedules a recurring nudge
type CreateReminderRequest struct {
	Message   string   `json:"message" binding:"required"`
	TimeOfDay string   `json:"timeOfDay" binding:"required"`
	Days      []string `json:"days" binding:"required,min=1"`
}

func CreateReminder(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reminder := models.UserReminder{
		UserID:    userID,
		Message:   req.Message,
		TimeOfDay: req.TimeOfDay,
		Days:      req.Days,
		Enabled:   true,
		CreatedAt: time.Now(),
	}
	if err := store.CreateReminder(ctx, &reminder); err != nil {
		log.Printf("Error creating reminder: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reminder"})
		return
	}
	c.JSON(http.StatusOK, reminder)
}

func GetReminders(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reminders, err := store.GetUserReminders(ctx, userID)
	if err != nil {
		log.Printf("Error fetching reminders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reminders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// ownsReminder reports whether the reminder exists and belongs to the user.
func ownsReminder(ctx context.Context, userID, reminderID primitive.ObjectID) bool {
	reminders, err := store.GetUserReminders(ctx, userID)
	if err != nil {
		log.Printf("Error fetching reminders: %v", err)
		return false
	}
	for _, r := range reminders {
		if r.ID == reminderID {
			return true
		}
	}
	return false
}

// UpdateReminderRequest toggles a reminder
type UpdateReminderRequest struct {
	Enabled bool `json:"enabled"`
}

func UpdateReminder(c *gin.Context) {
	reminderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder id"})
		return
	}

	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID := c.MustGet("userID").(primitive.ObjectID)
	if !ownsReminder(ctx, userID, reminderID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	if err := store.UpdateReminder(ctx, reminderID, req.Enabled); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
			return
		}
		log.Printf("Error updating reminder: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reminder"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": req.Enabled})
}

func DeleteReminder(c *gin.Context) {
	reminderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder id"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID := c.MustGet("userID").(primitive.ObjectID)
	if !ownsReminder(ctx, userID, reminderID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	if err := store.DeleteReminder(ctx, reminderID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
			return
		}
		log.Printf("Error deleting reminder: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reminder"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
