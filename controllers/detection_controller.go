package controllers

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"time"

	"ecolens/models"
	"ecolens/services"
	"ecolens/storage"
	"ecolens/websocket"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// compareDisposal is swapped out in tests; the verification flow is otherwise
// untestable without a live model.
var compareDisposal = services.CompareDisposal

// DetectRequest carries one captured frame for classification
type DetectRequest struct {
	Image string `json:"image" binding:"required"` // base64-encoded JPEG
}

// Detect classifies a captured frame without persisting anything
func Detect(c *gin.Context) {
	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image must be base64 encoded"})
		return
	}

	items, fallback := services.ClassifyImage(c.Request.Context(), image)
	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"confidence": services.AggregateConfidence(items),
		"fallback":   fallback,
	})
}

// CreateDetectionRequest records a classification the user chose to collect
type CreateDetectionRequest struct {
	Items []struct {
		Name       string `json:"name" binding:"required"`
		Material   string `json:"material"`
		Confidence int    `json:"confidence"`
	} `json:"items" binding:"required,min=1"`
	ImageHash       string `json:"imageHash"`
	ClientSignature string `json:"clientSignature"`
}

// CreateDetection persists a detection and either credits coins immediately
// or gates them behind Proof-in-Bin verification when the total reward meets
// the verification threshold.
func CreateDetection(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	var req CreateDetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Limiter failures fail open so a Redis outage doesn't block detections,
	// but they must be visible in the logs.
	if allowed, err := scanLimiter.AllowDaily(ctx, userID.Hex()); err != nil {
		log.Printf("Error checking daily scan limit for user %s: %v", userID.Hex(), err)
	} else if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":              "Daily detection limit reached, come back tomorrow",
			"dailyLimitExceeded": true,
		})
		return
	}
	if allowed, err := scanLimiter.AllowInterval(ctx, userID.Hex()); err != nil {
		log.Printf("Error checking scan interval for user %s: %v", userID.Hex(), err)
	} else if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":                 "You're scanning too fast, take a moment between items",
			"rapidScanningDetected": true,
		})
		return
	}

	// Reward amounts are recomputed server-side; client-sent coin values are
	// never trusted.
	items := make([]models.DetectedItem, 0, len(req.Items))
	for _, item := range req.Items {
		confidence := item.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 100 {
			confidence = 100
		}
		category, color, coins := services.MaterialProfile(item.Name, item.Material)
		items = append(items, models.DetectedItem{
			Name:       item.Name,
			Material:   item.Material,
			Confidence: confidence,
			Category:   category,
			Color:      color,
			Coins:      coins,
		})
	}

	totalCoins := services.TotalCoins(items)
	needsVerification := totalCoins >= cfg.Rewards.VerificationThreshold

	detection := models.Detection{
		UserID:            userID,
		ImageHash:         req.ImageHash,
		Items:             items,
		Confidence:        services.AggregateConfidence(items),
		CoinsAwarded:      totalCoins,
		NeedsVerification: needsVerification,
		Status:            models.DetectionStatusPending,
		ClientIP:          c.ClientIP(),
		ClientSignature:   req.ClientSignature,
		CreatedAt:         time.Now(),
	}
	if !needsVerification {
		detection.Status = models.DetectionStatusCredited
	}

	if err := store.CreateDetection(ctx, &detection); err != nil {
		log.Printf("Error creating detection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record detection"})
		return
	}

	if err := scanLimiter.RecordScan(ctx, userID.Hex()); err != nil {
		log.Printf("Error recording scan against limits: %v", err)
	}

	if needsVerification {
		c.JSON(http.StatusOK, gin.H{
			"detection":         detection,
			"needsVerification": true,
			"message":           "Show us the item going into the bin to collect your coins",
		})
		return
	}

	balance, err := creditDetection(ctx, &detection)
	if err != nil {
		log.Printf("Error crediting detection %s: %v", detection.ID.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit coins"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"detection":    detection,
		"coinsAwarded": totalCoins,
		"newBalance":   balance,
	})
}

// creditDetection applies the reward side effects for a detection: coin
// credit, earn transaction, stats counters, impact aggregates, achievement
// unlocks and the websocket broadcast. Returns the new balance.
func creditDetection(ctx context.Context, detection *models.Detection) (int, error) {
	user, err := store.UpdateUserCoins(ctx, detection.UserID, detection.CoinsAwarded)
	if err != nil {
		return 0, err
	}

	transaction := models.Transaction{
		UserID:      detection.UserID,
		Type:        models.TransactionEarn,
		Amount:      detection.CoinsAwarded,
		Description: earnDescription(detection.Items),
		DetectionID: &detection.ID,
		CreatedAt:   time.Now(),
	}
	if err := store.CreateTransaction(ctx, &transaction); err != nil {
		// Balance already moved; surface the ledger gap rather than hide it.
		log.Printf("Error appending earn transaction for detection %s: %v", detection.ID.Hex(), err)
	}

	stats, err := store.RecordDetectionStats(ctx, detection.UserID, detection.Items, detection.CoinsAwarded, time.Now())
	if err != nil {
		log.Printf("Error updating stats for user %s: %v", detection.UserID.Hex(), err)
	}

	if err := store.AddImpact(ctx, detection.UserID, services.ImpactForItems(detection.Items)); err != nil {
		log.Printf("Error updating impact for user %s: %v", detection.UserID.Hex(), err)
	}

	websocket.BroadcastRewardEvent(models.RewardEvent{
		Type:        "coins_credited",
		UserID:      detection.UserID.Hex(),
		Coins:       detection.CoinsAwarded,
		NewBalance:  user.Coins,
		DetectionID: detection.ID.Hex(),
		Timestamp:   time.Now(),
	})

	if stats != nil {
		for _, unlocked := range services.EvaluateAchievements(ctx, store, detection.UserID, stats) {
			websocket.BroadcastRewardEvent(models.RewardEvent{
				Type:        "achievement_unlocked",
				UserID:      detection.UserID.Hex(),
				Achievement: unlocked.Title,
				Timestamp:   time.Now(),
			})
		}
	}

	return user.Coins, nil
}

func earnDescription(items []models.DetectedItem) string {
	if len(items) == 1 {
		return "Recycled " + items[0].Name
	}
	return "Recycled " + items[0].Name + " and more"
}

// GetDetections returns the current user's detections, newest first
func GetDetections(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	detections, err := store.GetUserDetections(ctx, userID)
	if err != nil {
		log.Printf("Error fetching detections: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch detections"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detections": detections})
}

// VerifyDetectionRequest carries the Proof-in-Bin photo pair
type VerifyDetectionRequest struct {
	ItemImage     string `json:"itemImage" binding:"required"`     // base64 JPEG of the scanned item
	DisposalImage string `json:"disposalImage" binding:"required"` // base64 JPEG of the item entering the bin
}

const maxVerificationAttempts = 3

// VerifyDetection runs the Proof-in-Bin comparison for a pending detection.
// A passing comparison credits the gated coins; a failing one leaves the
// detection pending until the attempt budget is exhausted, after which it is
// terminally rejected.
func VerifyDetection(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	detectionID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid detection id"})
		return
	}

	var req VerifyDetectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	itemImg, err := base64.StdEncoding.DecodeString(req.ItemImage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itemImage must be base64 encoded"})
		return
	}
	disposalImg, err := base64.StdEncoding.DecodeString(req.DisposalImage)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "disposalImage must be base64 encoded"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	detection, err := store.GetDetection(ctx, detectionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Detection not found"})
			return
		}
		log.Printf("Error fetching detection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch detection"})
		return
	}
	if detection.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Detection belongs to another user"})
		return
	}
	if !detection.NeedsVerification || detection.Status != models.DetectionStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Detection is not awaiting verification", "status": detection.Status})
		return
	}

	attempts := detection.Attempts + 1
	elapsed := time.Since(detection.CreatedAt)

	result, err := compareDisposal(ctx, itemImg, disposalImg, detection.Items)
	if err != nil {
		log.Printf("Proof-in-Bin comparison failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Verification service unavailable, try again"})
		return
	}

	fraudScore := services.ComposeFraudScore(result.FraudRisk, attempts, elapsed, result.Confidence, result.Match, result.MatchScore)

	if services.VerificationPassed(result, fraudScore) {
		now := time.Now()
		if err := store.UpdateDetectionVerification(ctx, detection.ID, models.DetectionStatusVerified, attempts, fraudScore, &now); err != nil {
			log.Printf("Error updating detection verification: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update detection"})
			return
		}
		detection.Status = models.DetectionStatusVerified
		detection.Attempts = attempts
		detection.FraudScore = fraudScore

		balance, err := creditDetection(ctx, detection)
		if err != nil {
			log.Printf("Error crediting verified detection %s: %v", detection.ID.Hex(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit coins"})
			return
		}

		websocket.BroadcastRewardEvent(models.RewardEvent{
			Type:        "detection_verified",
			UserID:      userID.Hex(),
			DetectionID: detection.ID.Hex(),
			Timestamp:   time.Now(),
		})

		c.JSON(http.StatusOK, gin.H{
			"verified":     true,
			"coinsAwarded": detection.CoinsAwarded,
			"newBalance":   balance,
			"matchScore":   result.MatchScore,
			"fraudScore":   fraudScore,
		})
		return
	}

	status := models.DetectionStatusPending
	if attempts >= maxVerificationAttempts {
		status = models.DetectionStatusRejected
	}
	if err := store.UpdateDetectionVerification(ctx, detection.ID, status, attempts, fraudScore, nil); err != nil {
		log.Printf("Error updating detection verification: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update detection"})
		return
	}

	if status == models.DetectionStatusRejected {
		websocket.BroadcastRewardEvent(models.RewardEvent{
			Type:        "detection_rejected",
			UserID:      userID.Hex(),
			DetectionID: detection.ID.Hex(),
			Timestamp:   time.Now(),
		})
	}

	response := gin.H{
		"verified":          false,
		"status":            status,
		"attemptsRemaining": maxVerificationAttempts - attempts,
		"matchScore":        result.MatchScore,
		"fraudScore":        fraudScore,
		"reasoning":         result.Reasoning,
	}
	if fraudScore >= 70 {
		response["suspiciousPattern"] = true
	}
	c.JSON(http.StatusOK, response)
}
