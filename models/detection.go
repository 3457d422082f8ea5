package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Detection status values. A detection is "credited" when coins were awarded
// immediately, "pending" while awaiting Proof-in-Bin verification, and moves
// to "verified" or "rejected" through the verification endpoint.
const (
	DetectionStatusCredited = "credited"
	DetectionStatusPending  = "pending"
	DetectionStatusVerified = "verified"
	DetectionStatusRejected = "rejected"
)

// DetectedItem is a single classified item from a captured frame
type DetectedItem struct {
	Name       string `bson:"name" json:"name"`
	Material   string `bson:"material" json:"material"`
	Confidence int    `bson:"confidence" json:"confidence"` // 0-100
	Category   string `bson:"category" json:"category"`     // "recyclable", "compostable", "landfill"
	Color      string `bson:"color" json:"color"`
	Coins      int    `bson:"coins" json:"coins"`
}

// Detection records one classification event produced from a captured image
type Detection struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	ImageHash         string             `bson:"imageHash,omitempty" json:"imageHash,omitempty"`
	Items             []DetectedItem     `bson:"items" json:"items"`
	Confidence        int                `bson:"confidence" json:"confidence"`
	CoinsAwarded      int                `bson:"coinsAwarded" json:"coinsAwarded"`
	NeedsVerification bool               `bson:"needsVerification" json:"needsVerification"`
	Status            string             `bson:"status" json:"status"`
	Attempts          int                `bson:"attempts" json:"attempts"`
	FraudScore        int                `bson:"fraudScore" json:"fraudScore"`
	ClientIP          string             `bson:"clientIp,omitempty" json:"-"`
	ClientSignature   string             `bson:"clientSignature,omitempty" json:"-"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	VerifiedAt        *time.Time         `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
}
