package services

import "ecolens/models"

// Per-item environmental savings estimates, keyed by bin category. Rough
// published averages, good enough for a dashboard.
var impactPerCategory = map[string]models.EnvironmentalImpact{
	"recyclable":  {CO2SavedKg: 0.5, WaterSavedL: 4.0, EnergySaved: 0.3, TreesSaved: 0.001},
	"compostable": {CO2SavedKg: 0.2, WaterSavedL: 1.0, EnergySaved: 0.05, TreesSaved: 0},
}

// ImpactForItems estimates the environmental savings of one detection.
func ImpactForItems(items []models.DetectedItem) models.EnvironmentalImpact {
	var total models.EnvironmentalImpact
	for _, item := range items {
		impact, ok := impactPerCategory[item.Category]
		if !ok {
			continue
		}
		total.CO2SavedKg += impact.CO2SavedKg
		total.WaterSavedL += impact.WaterSavedL
		total.EnergySaved += impact.EnergySaved
		total.TreesSaved += impact.TreesSaved
		total.ItemsDiverted++
	}
	return total
}
