package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecolens/config"
	"ecolens/models"
	"ecolens/services"
	"ecolens/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTest wires the handlers against a fresh in-memory store and returns
// the router plus the authenticated test user.
func setupTest(t *testing.T, threshold int, limiterConfig services.LimiterConfig) (*gin.Engine, *storage.MemoryStore, *models.User) {
	t.Helper()

	store := storage.NewMemoryStore()
	user := &models.User{Username: "alice", Email: "alice@example.com", CreatedAt: time.Now()}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Rewards.VerificationThreshold = threshold
	if limiterConfig.DailyLimit == 0 {
		limiterConfig.DailyLimit = 1000
	}
	Init(store, cfg, services.NewMemoryScanLimiter(limiterConfig))

	router := gin.New()
	authed := router.Group("/api")
	authed.Use(func(c *gin.Context) {
		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Next()
	})
	authed.POST("/detections", CreateDetection)
	authed.GET("/detections", GetDetections)
	authed.POST("/detections/:id/verify", VerifyDetection)
	authed.GET("/transactions", GetTransactions)
	authed.POST("/transactions/qr", CreateQRRedemption)

	return router, store, user
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func plasticBottleRequest() map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{
			{"name": "Plastic Bottle", "material": "plastic", "confidence": 90},
		},
	}
}

func TestCreateDetectionCreditsImmediately(t *testing.T) {
	// threshold above the bottle reward, so no verification gate
	router, store, user := setupTest(t, 100, services.LimiterConfig{})

	w := postJSON(t, router, "/api/detections", plasticBottleRequest())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		CoinsAwarded int `json:"coinsAwarded"`
		NewBalance   int `json:"newBalance"`
		Detection    struct {
			Status string `json:"status"`
			Items  []struct {
				Category string `json:"category"`
				Coins    int    `json:"coins"`
			} `json:"items"`
		} `json:"detection"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.CoinsAwarded != 15 || resp.NewBalance != 15 {
		t.Errorf("coinsAwarded = %d, newBalance = %d, want 15/15", resp.CoinsAwarded, resp.NewBalance)
	}
	if resp.Detection.Status != models.DetectionStatusCredited {
		t.Errorf("status = %q, want credited", resp.Detection.Status)
	}
	if len(resp.Detection.Items) != 1 || resp.Detection.Items[0].Category != "recyclable" || resp.Detection.Items[0].Coins != 15 {
		t.Errorf("unexpected items: %+v", resp.Detection.Items)
	}

	ctx := context.Background()
	stored, _ := store.GetUserByID(ctx, user.ID)
	if stored.Coins != 15 || stored.LifetimeEarned != 15 {
		t.Errorf("persisted balance = %d/%d, want 15/15", stored.Coins, stored.LifetimeEarned)
	}

	transactions, _ := store.GetUserTransactions(ctx, user.ID)
	if len(transactions) != 1 {
		t.Fatalf("got %d transactions, want exactly 1", len(transactions))
	}
	if transactions[0].Type != models.TransactionEarn || transactions[0].Amount != 15 {
		t.Errorf("transaction = %+v, want earn of 15", transactions[0])
	}
	if transactions[0].DetectionID == nil {
		t.Error("earn transaction missing detection link")
	}

	stats, _ := store.GetStats(ctx, user.ID)
	if stats.TotalDetections != 1 || stats.TotalCoinsEarned != 15 || stats.PlasticCount != 1 {
		t.Errorf("stats not updated: %+v", stats)
	}
}

func TestCreateDetectionGatesHighValueRewards(t *testing.T) {
	router, store, user := setupTest(t, 10, services.LimiterConfig{})

	w := postJSON(t, router, "/api/detections", plasticBottleRequest())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		NeedsVerification bool `json:"needsVerification"`
		Detection         struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"detection"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.NeedsVerification || resp.Detection.Status != models.DetectionStatusPending {
		t.Errorf("expected pending verification, got %+v", resp)
	}

	// no coins and no ledger entry until verification passes
	ctx := context.Background()
	stored, _ := store.GetUserByID(ctx, user.ID)
	if stored.Coins != 0 {
		t.Errorf("balance = %d before verification, want 0", stored.Coins)
	}
	transactions, _ := store.GetUserTransactions(ctx, user.ID)
	if len(transactions) != 0 {
		t.Errorf("got %d transactions before verification, want 0", len(transactions))
	}
}

func verifyRequest() map[string]interface{} {
	return map[string]interface{}{
		"itemImage":     "aXRlbQ==",
		"disposalImage": "Ymlu",
	}
}

func pendingDetectionID(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := postJSON(t, router, "/api/detections", plasticBottleRequest())
	if w.Code != http.StatusOK {
		t.Fatalf("create detection failed: %s", w.Body.String())
	}
	var resp struct {
		Detection struct {
			ID string `json:"id"`
		} `json:"detection"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	return resp.Detection.ID
}

func TestVerifyDetectionCreditsOnPass(t *testing.T) {
	router, store, user := setupTest(t, 10, services.LimiterConfig{})
	detectionID := pendingDetectionID(t, router)

	original := compareDisposal
	compareDisposal = func(_ context.Context, _, _ []byte, _ []models.DetectedItem) (*services.ComparisonResult, error) {
		return &services.ComparisonResult{Match: true, MatchScore: 90, Confidence: 95, FraudRisk: 5}, nil
	}
	defer func() { compareDisposal = original }()

	w := postJSON(t, router, "/api/detections/"+detectionID+"/verify", verifyRequest())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Verified     bool `json:"verified"`
		CoinsAwarded int  `json:"coinsAwarded"`
		NewBalance   int  `json:"newBalance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Verified || resp.CoinsAwarded != 15 || resp.NewBalance != 15 {
		t.Errorf("unexpected verification response: %+v", resp)
	}

	ctx := context.Background()
	stored, _ := store.GetUserByID(ctx, user.ID)
	if stored.Coins != 15 {
		t.Errorf("balance = %d after verification, want 15", stored.Coins)
	}
	transactions, _ := store.GetUserTransactions(ctx, user.ID)
	if len(transactions) != 1 || transactions[0].Amount != 15 {
		t.Errorf("expected exactly one earn of 15, got %+v", transactions)
	}

	objID, _ := primitive.ObjectIDFromHex(detectionID)
	detection, _ := store.GetDetection(ctx, objID)
	if detection.Status != models.DetectionStatusVerified {
		t.Errorf("detection status = %q, want verified", detection.Status)
	}

	// a second verification attempt on a settled detection is rejected
	w = postJSON(t, router, "/api/detections/"+detectionID+"/verify", verifyRequest())
	if w.Code != http.StatusConflict {
		t.Errorf("re-verification status = %d, want 409", w.Code)
	}
}

func TestVerifyDetectionRejectsAfterAttemptBudget(t *testing.T) {
	router, store, user := setupTest(t, 10, services.LimiterConfig{})
	detectionID := pendingDetectionID(t, router)

	original := compareDisposal
	compareDisposal = func(_ context.Context, _, _ []byte, _ []models.DetectedItem) (*services.ComparisonResult, error) {
		return &services.ComparisonResult{Match: false, MatchScore: 20, Confidence: 80, FraudRisk: 40}, nil
	}
	defer func() { compareDisposal = original }()

	for attempt := 1; attempt <= maxVerificationAttempts; attempt++ {
		w := postJSON(t, router, "/api/detections/"+detectionID+"/verify", verifyRequest())
		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d status = %d, body = %s", attempt, w.Code, w.Body.String())
		}
		var resp struct {
			Verified bool   `json:"verified"`
			Status   string `json:"status"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if resp.Verified {
			t.Fatalf("attempt %d unexpectedly verified", attempt)
		}
		if attempt < maxVerificationAttempts && resp.Status != models.DetectionStatusPending {
			t.Errorf("attempt %d status = %q, want pending", attempt, resp.Status)
		}
		if attempt == maxVerificationAttempts && resp.Status != models.DetectionStatusRejected {
			t.Errorf("final attempt status = %q, want rejected", resp.Status)
		}
	}

	ctx := context.Background()
	stored, _ := store.GetUserByID(ctx, user.ID)
	if stored.Coins != 0 {
		t.Errorf("balance = %d after rejection, want 0", stored.Coins)
	}

	objID, _ := primitive.ObjectIDFromHex(detectionID)
	detection, _ := store.GetDetection(ctx, objID)
	if detection.Status != models.DetectionStatusRejected {
		t.Errorf("detection status = %q, want rejected", detection.Status)
	}
	if detection.Attempts != maxVerificationAttempts {
		t.Errorf("attempts = %d, want %d", detection.Attempts, maxVerificationAttempts)
	}
}

func TestCreateDetectionRapidScanning(t *testing.T) {
	router, _, _ := setupTest(t, 100, services.LimiterConfig{MinInterval: time.Hour})

	if w := postJSON(t, router, "/api/detections", plasticBottleRequest()); w.Code != http.StatusOK {
		t.Fatalf("first detection failed: %s", w.Body.String())
	}

	w := postJSON(t, router, "/api/detections", plasticBottleRequest())
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	var resp struct {
		RapidScanningDetected bool `json:"rapidScanningDetected"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.RapidScanningDetected {
		t.Error("expected rapidScanningDetected flag")
	}
}

// failingLimiter simulates a limiter backend outage.
type failingLimiter struct{}

func (failingLimiter) AllowDaily(context.Context, string) (bool, error) {
	return false, errors.New("limiter backend down")
}
func (failingLimiter) AllowInterval(context.Context, string) (bool, error) {
	return false, errors.New("limiter backend down")
}
func (failingLimiter) RecordScan(context.Context, string) error {
	return errors.New("limiter backend down")
}

func TestCreateDetectionLimiterOutageFailsOpen(t *testing.T) {
	router, store, user := setupTest(t, 100, services.LimiterConfig{})
	scanLimiter = failingLimiter{}

	w := postJSON(t, router, "/api/detections", plasticBottleRequest())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d during limiter outage, want 200, body = %s", w.Code, w.Body.String())
	}

	stored, _ := store.GetUserByID(context.Background(), user.ID)
	if stored.Coins != 15 {
		t.Errorf("balance = %d, want 15", stored.Coins)
	}
}

func TestCreateDetectionDailyLimit(t *testing.T) {
	router, _, _ := setupTest(t, 100, services.LimiterConfig{DailyLimit: 1})

	if w := postJSON(t, router, "/api/detections", plasticBottleRequest()); w.Code != http.StatusOK {
		t.Fatalf("first detection failed: %s", w.Body.String())
	}

	w := postJSON(t, router, "/api/detections", plasticBottleRequest())
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	var resp struct {
		DailyLimitExceeded bool `json:"dailyLimitExceeded"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.DailyLimitExceeded {
		t.Error("expected dailyLimitExceeded flag")
	}
}
