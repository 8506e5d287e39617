package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type rawAssessment struct {
	OverallScore    any            `mapstructure:"overall_score"`
	Breakdown       map[string]any `mapstructure:"scoring_breakdown"`
	Gaps            []string       `mapstructure:"gaps"`
	KeywordAnalysis struct {
		MissingKeywords []string `mapstructure:"missing_keywords"`
	} `mapstructure:"keyword_analysis"`
	Recommendations []rawRecommendation `mapstructure:"improvement_recommendations"`
	ATS             struct {
		Score  any      `mapstructure:"score"`
		Issues []string `mapstructure:"issues"`
	} `mapstructure:"ats_compatibility"`
	Summary string `mapstructure:"summary"`
}

type rawRecommendation struct {
	Category       string  `mapstructure:"category"`
	Recommendation string  `mapstructure:"recommendation"`
	Priority       string  `mapstructure:"priority"`
	ExampleBefore  *string `mapstructure:"example_before"`
	ExampleAfter   *string `mapstructure:"example_after"`
}

// ParseAssessment turns raw backend text into a FitAssessment. Fenced and plain
// JSON are handled the same way so callers never branch on the backend.
func ParseAssessment(raw string, weights Weights) (*FitAssessment, error) {
	cleaned := ExtractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrParse)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrParse, err)
	}

	var decoded rawAssessment
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build decoder: %v", ErrParse, err)
	}

	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: unexpected shape: %v", ErrParse, err)
	}

	subScores := make(map[string]*int, len(decoded.Breakdown))
	for name, value := range decoded.Breakdown {
		f := coerceFloat(value)
		if math.IsNaN(f) {
			subScores[name] = nil
			continue
		}
		score := clampScore(f)
		subScores[name] = &score
	}

	overall, ok := WeightedOverall(subScores, weights)
	if !ok {
		reported := coerceFloat(decoded.OverallScore)
		if math.IsNaN(reported) {
			return nil, fmt.Errorf("%w: overall_score is missing and no sub-scores are defined", ErrParse)
		}
		overall = clampScore(reported)
	}

	var atsScore *int
	if f := coerceFloat(decoded.ATS.Score); !math.IsNaN(f) {
		score := clampScore(f)
		atsScore = &score
	}

	recommendations := make([]Recommendation, 0, len(decoded.Recommendations))
	for _, r := range decoded.Recommendations {
		recommendations = append(recommendations, Recommendation{
			Category: strings.TrimSpace(r.Category),
			Advice:   strings.TrimSpace(r.Recommendation),
			Priority: parsePriority(r.Priority),
			Before:   r.ExampleBefore,
			After:    r.ExampleAfter,
		})
	}

	return &FitAssessment{
		Overall:         overall,
		SubScores:       subScores,
		Gaps:            trimAll(decoded.Gaps),
		MissingKeywords: trimAll(decoded.KeywordAnalysis.MissingKeywords),
		Recommendations: recommendations,
		ATS: ATSCompatibility{
			Score:  atsScore,
			Issues: trimAll(decoded.ATS.Issues),
		},
		Summary: strings.TrimSpace(decoded.Summary),
		Raw:     raw,
	}, nil
}

// ExtractJSON strips markdown fences and any prose around the outermost JSON object.
func ExtractJSON(raw string) string {
	raw = stripFence(raw, "json")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return strings.TrimSpace(raw)
	}

	return strings.TrimSpace(raw[start : end+1])
}

// stripFence removes a surrounding ``` or ```<lang> fence.
func stripFence(raw, lang string) string {
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "```") {
		return raw
	}

	body := raw[3:]
	if lang != "" && len(body) >= len(lang) && strings.EqualFold(body[:len(lang)], lang) {
		body = body[len(lang):]
	}

	if idx := strings.LastIndex(body, "```"); idx != -1 {
		body = body[:idx]
	}

	return strings.TrimSpace(body)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
