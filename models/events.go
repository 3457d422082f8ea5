package models

import "time"

// RewardEvent is broadcast over the websocket feed when coins move or an
// achievement unlocks.
type RewardEvent struct {
	Type        string    `json:"type"` // "coins_credited", "detection_verified", "detection_rejected", "achievement_unlocked"
	UserID      string    `json:"userId"`
	Coins       int       `json:"coins,omitempty"`
	NewBalance  int       `json:"newBalance,omitempty"`
	DetectionID string    `json:"detectionId,omitempty"`
	Achievement string    `json:"achievement,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
