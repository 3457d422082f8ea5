package services

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"strings"

	"ecolens/models"
)

// Display colors by bin category
const (
	colorRecyclable  = "#22c55e"
	colorCompostable = "#a3e635"
	colorLandfill    = "#9ca3af"
)

// materialRule maps a keyword in the item name or material to a bin category
// and base coin reward. Rules are matched in order: more specific keywords
// must come before their substrings ("plastic bottle" before "plastic").
type materialRule struct {
	keyword  string
	category string
	color    string
	coins    int
}

var materialRules = []materialRule{
	{"aluminum", "recyclable", colorRecyclable, 18},
	{"plastic bottle", "recyclable", colorRecyclable, 15},
	{"glass", "recyclable", colorRecyclable, 12},
	{"steel", "recyclable", colorRecyclable, 15},
	{"tin", "recyclable", colorRecyclable, 15},
	{"metal", "recyclable", colorRecyclable, 15},
	{"can", "recyclable", colorRecyclable, 15},
	{"plastic", "recyclable", colorRecyclable, 10},
	{"cardboard", "recyclable", colorRecyclable, 8},
	{"paper", "recyclable", colorRecyclable, 8},
	{"banana", "compostable", colorCompostable, 6},
	{"fruit", "compostable", colorCompostable, 6},
	{"food", "compostable", colorCompostable, 6},
	{"organic", "compostable", colorCompostable, 6},
	{"compost", "compostable", colorCompostable, 6},
}

// MaterialProfile derives the bin category, display color and base coin
// reward for an item. Deterministic: the same name/material strings always
// yield the same result.
func MaterialProfile(name, material string) (category, color string, coins int) {
	for _, probe := range []string{name, material} {
		lowered := strings.ToLower(probe)
		for _, rule := range materialRules {
			if strings.Contains(lowered, rule.keyword) {
				return rule.category, rule.color, rule.coins
			}
		}
	}
	return "landfill", colorLandfill, 5
}

const classifyPrompt = `Identify every distinct waste item visible in this photo.
For each item report its common name, its primary material, and your confidence
as an integer percentage.

Required Output Format (JSON):
[
  {"name": "plastic bottle", "material": "plastic", "confidence": 92},
  ...
]
Return only the JSON array, nothing else. Return [] if no waste item is visible.`

// ClassifyImage classifies a captured frame into waste items. On any remote
// failure it returns synthetic fallback results so the caller always has
// something to render; the second return value reports whether the results
// are synthetic.
func ClassifyImage(ctx context.Context, image []byte) ([]models.DetectedItem, bool) {
	raw, err := generateVisionText(ctx, classifyPrompt, image)
	if err != nil {
		log.Printf("Classification call failed, using fallback results: %v", err)
		return fallbackItems(), true
	}

	var parsed []struct {
		Name       string `json:"name"`
		Material   string `json:"material"`
		Confidence int    `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || len(parsed) == 0 {
		log.Printf("Unusable classification response, using fallback results: %v", err)
		return fallbackItems(), true
	}

	items := make([]models.DetectedItem, 0, len(parsed))
	for _, p := range parsed {
		if p.Confidence < 0 {
			p.Confidence = 0
		}
		if p.Confidence > 100 {
			p.Confidence = 100
		}
		category, color, coins := MaterialProfile(p.Name, p.Material)
		items = append(items, models.DetectedItem{
			Name:       p.Name,
			Material:   p.Material,
			Confidence: p.Confidence,
			Category:   category,
			Color:      color,
			Coins:      coins,
		})
	}
	return items, false
}

// fallbackCatalog holds the fixed items synthetic results are drawn from.
var fallbackCatalog = []struct {
	name     string
	material string
}{
	{"Plastic Bottle", "plastic bottle"},
	{"Aluminum Can", "aluminum"},
	{"Glass Jar", "glass"},
	{"Cardboard Box", "cardboard"},
	{"Paper Bag", "paper"},
	{"Tin Can", "tin"},
	{"Banana Peel", "organic"},
}

// fallbackItems synthesizes 1-2 label-consistent results with bounded random
// confidence and small reward jitter.
func fallbackItems() []models.DetectedItem {
	count := 1 + rand.Intn(2)
	picks := rand.Perm(len(fallbackCatalog))[:count]

	items := make([]models.DetectedItem, 0, count)
	for _, idx := range picks {
		entry := fallbackCatalog[idx]
		category, color, coins := MaterialProfile(entry.name, entry.material)
		jittered := coins + rand.Intn(5) - 2
		if jittered < 1 {
			jittered = 1
		}
		items = append(items, models.DetectedItem{
			Name:       entry.name,
			Material:   entry.material,
			Confidence: 70 + rand.Intn(26),
			Category:   category,
			Color:      color,
			Coins:      jittered,
		})
	}
	return items
}

// AggregateConfidence averages item confidences for the detection record.
func AggregateConfidence(items []models.DetectedItem) int {
	if len(items) == 0 {
		return 0
	}
	total := 0
	for _, item := range items {
		total += item.Confidence
	}
	return total / len(items)
}

// TotalCoins sums the coin rewards across items.
func TotalCoins(items []models.DetectedItem) int {
	total := 0
	for _, item := range items {
		total += item.Coins
	}
	return total
}
