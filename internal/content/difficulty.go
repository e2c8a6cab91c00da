package content

import (
	"math"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/abhisek/speedlearn/internal/speed"
)

const (
	// LongTextThreshold is the source length (in characters) above which a
	// lesson earns the length bonus.
	LongTextThreshold = 1000

	lengthBonus     = 0.1
	profileStep     = 0.1
	MinDifficulty   = 0.1
	MaxDifficulty   = 1.0
	difficultyScale = 10
)

// BaseDifficulty is the speed's base difficulty plus the long-text bonus,
// capped at 1.0.
func BaseDifficulty(text string, s speed.Speed) float64 {
	d := speed.BaseDifficulty(s)
	if utf8.RuneCountInString(text) > LongTextThreshold {
		d += lengthBonus
	}
	return math.Min(d, MaxDifficulty)
}

// Personalize applies the profile adjustments in order: complexity blend,
// challenge relief, strength stretch. A nil profile returns d unchanged.
func Personalize(d float64, profile *PersonalizationProfile) float64 {
	if profile == nil {
		return d
	}
	if profile.PreferredComplexity != nil {
		pc := lo.Clamp(*profile.PreferredComplexity, 0, 100)
		d = (d + float64(pc)/100) / 2
	}
	if len(profile.Challenges) > 0 {
		d = math.Max(d-profileStep, MinDifficulty)
	}
	if len(profile.Strengths) > 0 {
		d = math.Min(d+profileStep, MaxDifficulty)
	}
	return d
}

// Difficulty computes the full difficulty for a lesson at a speed.
func Difficulty(text string, s speed.Speed, profile *PersonalizationProfile) float64 {
	return Personalize(BaseDifficulty(text, s), profile)
}

// Level converts a difficulty in [0,1] to the integer scale 1..10.
func Level(d float64) int {
	return lo.Clamp(int(math.Round(d*difficultyScale)), 1, difficultyScale)
}

// PersonalizationLevel scores how much of the profile informed the
// adaptation: 0 without a profile, otherwise 40 plus 10 per populated
// dimension, capped at 100.
func PersonalizationLevel(profile *PersonalizationProfile) int {
	if profile == nil {
		return 0
	}
	level := 40
	dims := []bool{
		len(profile.Interests) > 0,
		len(profile.Strengths) > 0,
		len(profile.Challenges) > 0,
		profile.PreferredComplexity != nil,
		len(profile.AccessibilityNeeds) > 0,
		profile.CulturalContext != "",
	}
	level += 10 * lo.Count(dims, true)
	return min(level, 100)
}

// round2 rounds to two decimals so accumulated float error doesn't leak
// into thresholds.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
