package ai

import (
	"errors"
	"testing"
)

const sampleAssessment = `{
  "overall_score": 50,
  "scoring_breakdown": {
    "skills_match": 80,
    "experience_relevance": "70",
    "keywords_coverage": 60,
    "years_of_experience": null
  },
  "gaps": ["No Kubernetes", "  "],
  "keyword_analysis": {"missing_keywords": ["kubernetes", "helm"]},
  "improvement_recommendations": [
    {
      "category": "Skills",
      "recommendation": "Mention container orchestration",
      "priority": "high",
      "example_before": "Deployed services",
      "example_after": "Deployed services to Kubernetes"
    },
    {
      "category": "Summary",
      "recommendation": "Lead with Go experience",
      "priority": "Low",
      "example_before": null,
      "example_after": null
    }
  ],
  "ats_compatibility": {"score": 88, "issues": "Tables are not parsed"},
  "summary": "Solid backend fit."
}`

func TestParseAssessment(t *testing.T) {
	a, err := ParseAssessment(sampleAssessment, DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Sub-scores take precedence over the reported overall score.
	if a.Overall != 72 {
		t.Fatalf("expected overall 72, got %d", a.Overall)
	}

	if v := a.SubScores[SubScoreExperience]; v == nil || *v != 70 {
		t.Fatalf("expected string sub-score to be decoded, got %v", v)
	}

	if v, ok := a.SubScores[SubScoreYears]; !ok || v != nil {
		t.Fatalf("expected years to be present and nil")
	}

	if len(a.Gaps) != 1 || a.Gaps[0] != "No Kubernetes" {
		t.Fatalf("unexpected gaps: %v", a.Gaps)
	}

	if len(a.MissingKeywords) != 2 {
		t.Fatalf("unexpected missing keywords: %v", a.MissingKeywords)
	}

	if len(a.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(a.Recommendations))
	}

	first := a.Recommendations[0]
	if first.Priority != PriorityHigh || first.Before == nil || *first.After != "Deployed services to Kubernetes" {
		t.Fatalf("unexpected first recommendation: %+v", first)
	}

	if a.Recommendations[1].Before != nil || a.Recommendations[1].After != nil {
		t.Fatalf("expected empty example pair")
	}

	if a.ATS.Score == nil || *a.ATS.Score != 88 || len(a.ATS.Issues) != 1 || a.ATS.Issues[0] != "Tables are not parsed" {
		t.Fatalf("unexpected ats: %+v", a.ATS)
	}

	if a.Summary != "Solid backend fit." {
		t.Fatalf("unexpected summary: %q", a.Summary)
	}
}

func TestParseAssessmentFencedMatchesPlain(t *testing.T) {
	plain, err := ParseAssessment(sampleAssessment, DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fenced, err := ParseAssessment("Here is the result:\n```json\n"+sampleAssessment+"\n```\n", DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plain.Overall != fenced.Overall || Digest(plain.Recommendations) != Digest(fenced.Recommendations) {
		t.Fatalf("fenced and plain payloads differ")
	}
}

func TestParseAssessmentFallsBackToReportedOverall(t *testing.T) {
	a, err := ParseAssessment(`{"overall_score": "91.6", "ats_compatibility": {"score": 140}}`, DefaultWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Overall != 92 {
		t.Fatalf("expected 92, got %d", a.Overall)
	}

	if a.ATS.Score == nil || *a.ATS.Score != 100 {
		t.Fatalf("expected ats score to be clamped to 100, got %v", a.ATS.Score)
	}
}

func TestParseAssessmentMissingATSScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing", raw: `{"overall_score": 70}`},
		{name: "not numeric", raw: `{"overall_score": 70, "ats_compatibility": {"score": "n/a"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, err := ParseAssessment(tt.raw, DefaultWeights())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.ATS.Score != nil {
				t.Fatalf("expected no ats score, got %d", *a.ATS.Score)
			}
		})
	}
}

func TestParseAssessmentFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: "   "},
		{name: "not json", raw: "I cannot help with that."},
		{name: "broken json", raw: `{"overall_score": 80,`},
		{name: "missing scores", raw: `{"summary": "ok"}`},
		{name: "wrong shape", raw: `{"overall_score": 70, "gaps": {"a": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseAssessment(tt.raw, DefaultWeights()); !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{name: "plain", input: `{"a":1}`, expect: `{"a":1}`},
		{name: "json fence", input: "```json\n{\"a\":1}\n```", expect: `{"a":1}`},
		{name: "bare fence", input: "```\n{\"a\":1}\n```", expect: `{"a":1}`},
		{name: "prose around", input: "Sure! {\"a\":1} Hope it helps.", expect: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractJSON(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
