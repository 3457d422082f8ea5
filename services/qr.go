package services

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// RedemptionPayload is the JSON document embedded in a redemption QR image.
type RedemptionPayload struct {
	Code      string  `json:"code"`
	Value     float64 `json:"value"`
	Currency  string  `json:"currency"`
	Timestamp int64   `json:"timestamp"`
}

// MintRedemptionCode generates a fresh redemption code string.
func MintRedemptionCode() string {
	return "ECO-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
}

// EncodeRedemptionQR renders the payload as a QR PNG and returns it as a
// data URI alongside the raw embedded JSON.
func EncodeRedemptionQR(payload RedemptionPayload) (dataURI string, embedded []byte, err error) {
	if payload.Timestamp == 0 {
		payload.Timestamp = time.Now().Unix()
	}
	embedded, err = json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal redemption payload: %w", err)
	}

	png, err := qrcode.Encode(string(embedded), qrcode.Medium, 256)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode QR image: %w", err)
	}

	dataURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return dataURI, embedded, nil
}
