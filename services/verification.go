package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ecolens/models"
)

// ComparisonResult is the structured outcome of a Proof-in-Bin comparison.
type ComparisonResult struct {
	Match        bool   `json:"match"`
	MatchScore   int    `json:"matchScore"`
	ItemSeen     string `json:"itemSeen"`
	DisposalSeen string `json:"disposalSeen"`
	Confidence   int    `json:"confidence"`
	Reasoning    string `json:"reasoning"`
	FraudRisk    int    `json:"fraudRisk"`
}

const compareTemplate = `The first photo shows an item a user claims to have scanned: %s.
The second photo should show the same item being disposed of in a bin.
Compare the two photos and judge whether the disposal photo genuinely shows
the claimed item going into a bin.

Required Output Format (JSON):
{
  "match": true,
  "matchScore": 85,
  "itemSeen": "description of the item in photo 1",
  "disposalSeen": "description of what photo 2 shows",
  "confidence": 90,
  "reasoning": "short explanation",
  "fraudRisk": 10
}
matchScore, confidence and fraudRisk are integers from 0 to 100.
Return only the JSON object, nothing else.`

// CompareDisposal runs the Proof-in-Bin comparison between the originally
// scanned item photo and the disposal photo. Unlike classification there is
// no synthetic fallback: a verification verdict cannot be invented, so remote
// failures propagate to the caller.
func CompareDisposal(ctx context.Context, itemImg, disposalImg []byte, items []models.DetectedItem) (*ComparisonResult, error) {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}

	prompt := fmt.Sprintf(compareTemplate, strings.Join(names, ", "))
	raw, err := generateVisionText(ctx, prompt, itemImg, disposalImg)
	if err != nil {
		return nil, fmt.Errorf("comparison call failed: %w", err)
	}

	var result ComparisonResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("unusable comparison response: %w", err)
	}
	result.MatchScore = clampScore(result.MatchScore)
	result.Confidence = clampScore(result.Confidence)
	result.FraudRisk = clampScore(result.FraudRisk)
	return &result, nil
}

// ComposeFraudScore layers behavioral penalties onto the model-provided fraud
// risk. Each penalty can only raise the score and the result stays in [0,100]:
//   - +20 per verification attempt beyond the first
//   - +25 when the disposal photo follows the scan by under 30 seconds
//   - +15 when it follows by more than 10 minutes
//   - +20 when comparator confidence is below 60
//   - +30 when the comparator claims a match but its match score is below 70
func ComposeFraudScore(base, attempts int, elapsed time.Duration, confidence int, match bool, matchScore int) int {
	score := base
	if attempts > 1 {
		score += 20 * (attempts - 1)
	}
	if elapsed < 30*time.Second {
		score += 25
	} else if elapsed > 10*time.Minute {
		score += 15
	}
	if confidence < 60 {
		score += 20
	}
	if match && matchScore < 70 {
		score += 30
	}
	return clampScore(score)
}

// VerificationPassed decides whether a comparison outcome credits the
// detection: the comparator must claim a solid match and the composed fraud
// score must stay below the rejection threshold.
func VerificationPassed(result *ComparisonResult, fraudScore int) bool {
	return result.Match && result.MatchScore >= 70 && fraudScore < 70
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
