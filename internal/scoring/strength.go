// Package scoring contains pure password-strength and privacy-risk scoring.
package scoring

import (
	"strings"
	"unicode/utf8"
)

// Symbols is the character class counted by the symbol criterion.
const Symbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// MinLength is the length satisfying the length criterion.
const MinLength = 8

// Criterion names one password strength check.
type Criterion string

const (
	CritLength    Criterion = "length"
	CritLowercase Criterion = "lowercase"
	CritUppercase Criterion = "uppercase"
	CritDigit     Criterion = "numbers"
	CritSymbol    Criterion = "symbols"
)

// Criteria lists every criterion in evaluation order.
var Criteria = []Criterion{CritLength, CritLowercase, CritUppercase, CritDigit, CritSymbol}

// Band is the human label of a strength score.
type Band string

const (
	BandVeryWeak Band = "Very Weak"
	BandWeak     Band = "Weak"
	BandMedium   Band = "Medium"
	BandStrong   Band = "Strong"
)

// Strength is the result of ScorePasswordStrength.
type Strength struct {
	Score     int
	Satisfied map[Criterion]bool
}

// Band maps the score to a label.
func (s Strength) Band() Band {
	return StrengthBand(s.Score)
}

// ScorePasswordStrength counts the satisfied criteria of pw. Every criterion is
// reported in Satisfied, true or false.
func ScorePasswordStrength(pw string) Strength {
	sat := map[Criterion]bool{
		CritLength:    utf8.RuneCountInString(pw) >= MinLength,
		CritLowercase: strings.ContainsFunc(pw, func(r rune) bool { return r >= 'a' && r <= 'z' }),
		CritUppercase: strings.ContainsFunc(pw, func(r rune) bool { return r >= 'A' && r <= 'Z' }),
		CritDigit:     strings.ContainsFunc(pw, func(r rune) bool { return r >= '0' && r <= '9' }),
		CritSymbol:    strings.ContainsAny(pw, Symbols),
	}
	score := 0
	for _, ok := range sat {
		if ok {
			score++
		}
	}
	return Strength{Score: score, Satisfied: sat}
}

// StrengthBand: 0-1 very weak, 2 weak, 3 medium, 4-5 strong.
func StrengthBand(score int) Band {
	switch {
	case score >= 4:
		return BandStrong
	case score == 3:
		return BandMedium
	case score == 2:
		return BandWeak
	default:
		return BandVeryWeak
	}
}
