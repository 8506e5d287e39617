package ai

import (
	"fmt"
	"strings"
)

// FailedMarker fills the score column of a backend whose assessment failed.
const FailedMarker = "FAILED"

// BlockColumns names the flattened columns produced for one backend.
func BlockColumns(backend string) []string {
	return []string{
		backend + " Score",
		backend + " Recommendations",
		backend + " ATS Score",
		backend + " ATS Issues",
	}
}

// Flatten renders an assessment into the ordered cells of one backend block:
// overall score, recommendation digest, ATS score and ATS issues.
func Flatten(a *FitAssessment) []any {
	if a == nil {
		return FailedBlock()
	}

	var ats any = ""
	if a.ATS.Score != nil {
		ats = *a.ATS.Score
	}

	return []any{
		a.Overall,
		Digest(a.Recommendations),
		ats,
		IssuesText(a.ATS.Issues),
	}
}

// FailedBlock is the block written for a backend without an assessment.
func FailedBlock() []any {
	return []any{FailedMarker, "", "", ""}
}

// Digest renders recommendations one per line, in list order.
func Digest(recs []Recommendation) string {
	lines := make([]string, 0, len(recs))
	for _, r := range recs {
		line := fmt.Sprintf("[%s] %s: %s", r.Priority, r.Category, r.Advice)
		if r.Before != nil || r.After != nil {
			line += fmt.Sprintf(", before: %s, after: %s", deref(r.Before), deref(r.After))
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func IssuesText(issues []string) string {
	return strings.Join(issues, "\n")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
