package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"ecolens/models"
	"ecolens/services"
	"ecolens/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// encodeRedemptionQR is swapped out in tests to exercise the encode-failure
// path.
var encodeRedemptionQR = services.EncodeRedemptionQR

// GetTransactions returns the user's ledger, newest first
func GetTransactions(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transactions, err := store.GetUserTransactions(ctx, userID)
	if err != nil {
		log.Printf("Error fetching transactions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// QRRedemptionRequest spends coins on a QR redemption code
type QRRedemptionRequest struct {
	Amount   int     `json:"amount" binding:"required,gt=0"` // coins to spend
	Value    float64 `json:"value" binding:"required,gt=0"`  // target currency value
	Currency string  `json:"currency"`
}

// CreateQRRedemption debits the balance, mints a redemption code, encodes it
// into a scannable image and appends the spend transaction. An insufficient
// balance rejects the request without touching any record.
func CreateQRRedemption(c *gin.Context) {
	userID := c.MustGet("userID").(primitive.ObjectID)

	var req QRRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Mint and encode before touching the balance so an encode failure
	// cannot leave coins deducted without a voucher.
	code := services.MintRedemptionCode()
	qrImage, payload, err := encodeRedemptionQR(services.RedemptionPayload{
		Code:     code,
		Value:    req.Value,
		Currency: req.Currency,
	})
	if err != nil {
		log.Printf("Error encoding QR: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	user, err := store.UpdateUserCoins(ctx, userID, -req.Amount)
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientCoins) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient coins"})
			return
		}
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Printf("Error debiting coins: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to debit coins"})
		return
	}

	transaction := models.Transaction{
		UserID:         userID,
		Type:           models.TransactionSpend,
		Amount:         -req.Amount,
		Description:    "Redeemed coins for QR voucher",
		RedemptionCode: code,
		Metadata: map[string]interface{}{
			"value":    req.Value,
			"currency": req.Currency,
		},
		CreatedAt: time.Now(),
	}
	if err := store.CreateTransaction(ctx, &transaction); err != nil {
		log.Printf("Error appending spend transaction: %v", err)
	}
	if err := store.RecordSpendStats(ctx, userID, req.Amount); err != nil {
		log.Printf("Error updating spend stats: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"code":       code,
		"qrImage":    qrImage,
		"payload":    string(payload),
		"newBalance": user.Coins,
	})
}
