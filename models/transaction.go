package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TransactionEarn  = "earn"
	TransactionSpend = "spend"
)

// Transaction is an append-only ledger entry for coin movement.
// Earn transactions carry a positive amount, spend transactions a negative one.
type Transaction struct {
	ID             primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         primitive.ObjectID     `bson:"userId" json:"userId"`
	Type           string                 `bson:"type" json:"type"`
	Amount         int                    `bson:"amount" json:"amount"`
	Description    string                 `bson:"description" json:"description"`
	DetectionID    *primitive.ObjectID    `bson:"detectionId,omitempty" json:"detectionId,omitempty"`
	RedemptionCode string                 `bson:"redemptionCode,omitempty" json:"redemptionCode,omitempty"`
	Metadata       map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt      time.Time              `bson:"createdAt" json:"createdAt"`
}
