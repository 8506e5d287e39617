package ai

import "testing"

func strPtr(s string) *string { return &s }

func TestFlatten(t *testing.T) {
	a := &FitAssessment{
		Overall: 85,
		Recommendations: []Recommendation{
			{Category: "Skills", Advice: "Mention Kafka", Priority: PriorityHigh, Before: strPtr("Used queues"), After: strPtr("Built Kafka consumers")},
			{Category: "Format", Advice: "Use one column", Priority: PriorityLow},
		},
		ATS: ATSCompatibility{Score: intPtr(70), Issues: []string{"Header images", "Tables"}},
	}

	cells := Flatten(a)
	if len(cells) != len(BlockColumns("gemini")) {
		t.Fatalf("block width mismatch: %d", len(cells))
	}

	if cells[0] != 85 {
		t.Fatalf("unexpected overall: %v", cells[0])
	}

	expectedDigest := "[High] Skills: Mention Kafka, before: Used queues, after: Built Kafka consumers\n[Low] Format: Use one column"
	if cells[1] != expectedDigest {
		t.Fatalf("unexpected digest:\n%s", cells[1])
	}

	if cells[2] != 70 {
		t.Fatalf("unexpected ats score: %v", cells[2])
	}

	if cells[3] != "Header images\nTables" {
		t.Fatalf("unexpected ats issues: %q", cells[3])
	}
}

func TestFlattenWithoutATSScore(t *testing.T) {
	cells := Flatten(&FitAssessment{Overall: 60})
	if cells[2] != "" {
		t.Fatalf("expected empty ats cell, got %v", cells[2])
	}
}

func TestFlattenNil(t *testing.T) {
	cells := Flatten(nil)
	if cells[0] != FailedMarker {
		t.Fatalf("expected failure marker, got %v", cells[0])
	}
	for _, c := range cells[1:] {
		if c != "" {
			t.Fatalf("expected empty cells after marker, got %v", cells)
		}
	}
}
