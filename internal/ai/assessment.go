package ai

import (
	"math"
	"sort"
	"strings"
)

const (
	SubScoreSkills     = "skills_match"
	SubScoreExperience = "experience_relevance"
	SubScoreKeywords   = "keywords_coverage"
	SubScoreYears      = "years_of_experience"

	DefaultPromotionThreshold = 80
)

// Priority is the tier of an improvement recommendation.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// FitAssessment is the structured result of scoring one resume against one posting.
type FitAssessment struct {
	Backend string
	Overall int
	// SubScores holds nil for dimensions the backend found inapplicable.
	SubScores       map[string]*int
	Gaps            []string
	MissingKeywords []string
	Recommendations []Recommendation
	ATS             ATSCompatibility
	Summary         string
	Raw             string
}

type Recommendation struct {
	Category string
	Advice   string
	Priority Priority
	Before   *string
	After    *string
}

// ATSCompatibility holds the ATS check. Score is nil when the backend did not
// report a usable number.
type ATSCompatibility struct {
	Score  *int
	Issues []string
}

// Weights maps sub-score dimensions to their share of the overall score.
type Weights map[string]float64

func DefaultWeights() Weights {
	return Weights{
		SubScoreSkills:     0.35,
		SubScoreExperience: 0.35,
		SubScoreKeywords:   0.20,
		SubScoreYears:      0.10,
	}
}

// WeightedOverall combines sub-scores into an overall score. The weight of a nil
// or missing dimension is spread proportionally over the defined ones.
// It returns false when no weighted dimension is defined.
func WeightedOverall(scores map[string]*int, weights Weights) (int, bool) {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var total, weightSum float64
	for _, name := range names {
		w := weights[name]
		if w <= 0 {
			continue
		}
		v, ok := scores[name]
		if !ok || v == nil {
			continue
		}
		total += w * float64(*v)
		weightSum += w
	}

	if weightSum == 0 {
		return 0, false
	}

	return int(math.Round(total / weightSum)), true
}

// PromotionReached reports whether score is high enough to tailor the resume.
func PromotionReached(score, threshold int) bool {
	return score >= threshold
}

func parsePriority(s string) Priority {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "high":
		return PriorityHigh
	case "medium", "med":
		return PriorityMedium
	case "low":
		return PriorityLow
	default:
		return Priority(s)
	}
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
