package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultAdminLimit = 100

func adminLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultAdminLimit)))
	if err != nil || limit <= 0 {
		return defaultAdminLimit
	}
	return limit
}

// ListUsers returns recent users for the database viewer
func ListUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users, err := store.ListUsers(ctx, adminLimit(c))
	if err != nil {
		log.Printf("Error listing users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ListDetections returns recent detections for the database viewer
func ListDetections(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	detections, err := store.ListDetections(ctx, adminLimit(c))
	if err != nil {
		log.Printf("Error listing detections: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list detections"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detections": detections})
}

// ListTransactions returns recent ledger entries for the database viewer
func ListTransactions(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	transactions, err := store.ListTransactions(ctx, adminLimit(c))
	if err != nil {
		log.Printf("Error listing transactions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
