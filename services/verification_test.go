package services

import (
	"testing"
	"time"
)

// neutral arguments that trip no penalty
const (
	okAttempts   = 1
	okConfidence = 90
	okMatchScore = 85
)

var okElapsed = 2 * time.Minute

func TestComposeFraudScoreBaseOnly(t *testing.T) {
	if got := ComposeFraudScore(10, okAttempts, okElapsed, okConfidence, true, okMatchScore); got != 10 {
		t.Errorf("score = %d, want base 10 with no penalties", got)
	}
}

func TestComposeFraudScorePenalties(t *testing.T) {
	base := 10
	cases := []struct {
		name       string
		attempts   int
		elapsed    time.Duration
		confidence int
		match      bool
		matchScore int
		want       int
	}{
		{"second attempt", 2, okElapsed, okConfidence, true, okMatchScore, base + 20},
		{"third attempt", 3, okElapsed, okConfidence, true, okMatchScore, base + 40},
		{"too fast", okAttempts, 10 * time.Second, okConfidence, true, okMatchScore, base + 25},
		{"too slow", okAttempts, 11 * time.Minute, okConfidence, true, okMatchScore, base + 15},
		{"low confidence", okAttempts, okElapsed, 50, true, okMatchScore, base + 20},
		{"weak match", okAttempts, okElapsed, okConfidence, true, 60, base + 30},
		{"weak non-match ignored", okAttempts, okElapsed, okConfidence, false, 60, base},
	}

	for _, tc := range cases {
		got := ComposeFraudScore(base, tc.attempts, tc.elapsed, tc.confidence, tc.match, tc.matchScore)
		if got != tc.want {
			t.Errorf("%s: score = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestComposeFraudScoreMonotonic(t *testing.T) {
	base := 20
	clean := ComposeFraudScore(base, okAttempts, okElapsed, okConfidence, true, okMatchScore)

	penalized := []int{
		ComposeFraudScore(base, 2, okElapsed, okConfidence, true, okMatchScore),
		ComposeFraudScore(base, okAttempts, 5*time.Second, okConfidence, true, okMatchScore),
		ComposeFraudScore(base, okAttempts, 20*time.Minute, okConfidence, true, okMatchScore),
		ComposeFraudScore(base, okAttempts, okElapsed, 30, true, okMatchScore),
		ComposeFraudScore(base, okAttempts, okElapsed, okConfidence, true, 50),
	}

	for i, score := range penalized {
		if score < clean {
			t.Errorf("penalty %d decreased score: %d < %d", i, score, clean)
		}
	}
}

func TestComposeFraudScoreClamped(t *testing.T) {
	// every penalty at once on a high base
	got := ComposeFraudScore(90, 5, 5*time.Second, 10, true, 10)
	if got != 100 {
		t.Errorf("score = %d, want clamp at 100", got)
	}

	if got := ComposeFraudScore(-50, okAttempts, okElapsed, okConfidence, true, okMatchScore); got != 0 {
		t.Errorf("score = %d, want clamp at 0", got)
	}
}

func TestVerificationPassed(t *testing.T) {
	pass := &ComparisonResult{Match: true, MatchScore: 85}
	if !VerificationPassed(pass, 20) {
		t.Error("expected strong match with low fraud score to pass")
	}
	if VerificationPassed(pass, 70) {
		t.Error("expected high fraud score to fail verification")
	}
	if VerificationPassed(&ComparisonResult{Match: true, MatchScore: 60}, 20) {
		t.Error("expected weak match score to fail verification")
	}
	if VerificationPassed(&ComparisonResult{Match: false, MatchScore: 90}, 20) {
		t.Error("expected non-match to fail verification")
	}
}
