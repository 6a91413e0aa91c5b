package scoring

import "fmt"

// RiskFactors are the self-reported answers of the privacy questionnaire.
type RiskFactors struct {
	HasTwoFactor            bool `json:"twoFactor"`
	WeakPasswordCount       int  `json:"weakPasswords"`
	UsesPublicWifi          bool `json:"publicWifi"`
	SocialMediaAccountCount int  `json:"socialMedia"`
}

// Risk is the result of ScorePrivacyRisk.
type Risk struct {
	Score   int      `json:"riskScore"`
	Reasons []string `json:"factors"`
}

// Level is a coarse risk bucket.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

const (
	maxRisk          = 100
	minDashboardRisk = 20

	// DashboardBaseRisk is the starting estimate before vault items are counted.
	DashboardBaseRisk = 65
)

// ScorePrivacyRisk sums the weights of the present risk factors, capped at 100.
// Reasons are emitted in a fixed order: 2FA, weak passwords, public WiFi, social media.
func ScorePrivacyRisk(f RiskFactors) Risk {
	score := 0
	reasons := []string{}
	if !f.HasTwoFactor {
		score += 25
		reasons = append(reasons, "No two-factor authentication")
	}
	if f.WeakPasswordCount > 0 {
		score += 10 * f.WeakPasswordCount
		reasons = append(reasons, fmt.Sprintf("%d weak passwords", f.WeakPasswordCount))
	}
	if f.UsesPublicWifi {
		score += 15
		reasons = append(reasons, "Uses public WiFi frequently")
	}
	if f.SocialMediaAccountCount > 3 {
		score += 10
		reasons = append(reasons, "High social media exposure")
	}
	return Risk{Score: min(score, maxRisk), Reasons: reasons}
}

// RiskLevel buckets a score: up to 30 low, up to 70 medium, above that high.
func RiskLevel(score int) Level {
	switch {
	case score <= 30:
		return LevelLow
	case score <= 70:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// VaultRiskLevel lowers a base score by two points per stored vault item, never below 20.
func VaultRiskLevel(base, vaultItems int) int {
	return max(minDashboardRisk, base-2*vaultItems)
}
