package salary

import (
	"errors"
	"testing"
)

func newExtractor(t *testing.T, floor float64, mode Mode) *Extractor {
	t.Helper()

	e, err := New(Config{Floor: floor, Mode: mode})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func TestHasSalarySignal(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, 0, "")

	tests := []struct {
		name   string
		input  string
		expect bool
	}{
		{name: "empty", input: "", expect: false},
		{name: "nan like", input: "NaN", expect: false},
		{name: "none", input: " None ", expect: false},
		{name: "no keywords", input: "We build distributed systems in Go.", expect: false},
		{name: "currency symbol", input: "Up to $120k", expect: true},
		{name: "unit keyword", input: "Paid 60 per hour", expect: true},
		{name: "noun keyword", input: "Competitive COMPENSATION package", expect: true},
		{name: "mixed case shorthand", input: "Offers up to 160K", expect: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := e.HasSalarySignal(tt.input); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestExtractSalaryTextCurrencyRange(t *testing.T) {
	e := newExtractor(t, 0, "")

	m := e.ExtractSalaryText("$100,000 - $150,000 annually")
	if !m.Matched {
		t.Fatalf("expected match")
	}

	if len(m.RawAmounts) != 2 || m.RawAmounts[0] != "100,000" || m.RawAmounts[1] != "150,000" {
		t.Fatalf("unexpected raw amounts: %v", m.RawAmounts)
	}

	if m.Text != "$100,000 - $150,000" {
		t.Fatalf("unexpected matched text: %q", m.Text)
	}

	r, ok := e.ParseRange("$100,000 - $150,000 annually")
	if !ok {
		t.Fatalf("expected range")
	}
	if r.Min != 100000 || r.Max != 150000 {
		t.Fatalf("unexpected range: %+v", r)
	}
}

func TestExtractSalaryTextPatternOrder(t *testing.T) {
	t.Parallel()

	e := newExtractor(t, 0, "")

	tests := []struct {
		name    string
		input   string
		amounts []string
		min     float64
		max     float64
	}{
		{name: "k shorthand range", input: "Pay: $120k - $150k", amounts: []string{"120", "150"}, min: 120000, max: 150000},
		{name: "bare range", input: "Band 90-110k depending on level", amounts: []string{"90", "110"}, min: 90000, max: 110000},
		{name: "single currency amount", input: "Up to $120k", amounts: []string{"120"}, min: 120000, max: 120000},
		{name: "single bare k", input: "around 175k/year", amounts: []string{"175"}, min: 175000, max: 175000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := e.ExtractSalaryText(tt.input)
			if !m.Matched {
				t.Fatalf("expected match for %q", tt.input)
			}
			if len(m.RawAmounts) != len(tt.amounts) {
				t.Fatalf("expected amounts %v, got %v", tt.amounts, m.RawAmounts)
			}
			for i := range tt.amounts {
				if m.RawAmounts[i] != tt.amounts[i] {
					t.Fatalf("expected amounts %v, got %v", tt.amounts, m.RawAmounts)
				}
			}

			r, ok := e.ParseRange(tt.input)
			if !ok {
				t.Fatalf("expected range for %q", tt.input)
			}
			if r.Min != tt.min || r.Max != tt.max {
				t.Fatalf("expected (%v, %v), got (%v, %v)", tt.min, tt.max, r.Min, r.Max)
			}
		})
	}
}

func TestExtractSalaryTextKeywordOnly(t *testing.T) {
	e := newExtractor(t, 0, "")

	m := e.ExtractSalaryText("Competitive salary and equity")
	if !m.Matched {
		t.Fatalf("expected keyword-only match")
	}
	if m.Text != "" || len(m.RawAmounts) != 0 {
		t.Fatalf("expected no text or amounts, got %+v", m)
	}

	if _, ok := e.ParseRange("Competitive salary and equity"); ok {
		t.Fatalf("expected no range for keyword-only signal")
	}

	if m := e.ExtractSalaryText("Build pipelines in Go"); m.Matched {
		t.Fatalf("expected no match, got %+v", m)
	}
}

func TestNormalizeAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw    string
		expect float64
	}{
		{raw: "150,000", expect: 150000},
		{raw: "120", expect: 120000},
		{raw: "99.50", expect: 99500},
		// Small absolute values are read as k-shorthand.
		{raw: "5", expect: 5000},
		{raw: "1000", expect: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeAmount(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}

	if _, err := NormalizeAmount("abc"); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if _, err := NormalizeAmount(" "); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse for empty input, got %v", err)
	}
}

func TestMeetsThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mode   Mode
		input  string
		expect bool
	}{
		{name: "no signal passes", mode: ModeAny, input: "Great team, remote friendly.", expect: true},
		{name: "keyword only passes", mode: ModeAny, input: "Competitive salary", expect: true},
		{name: "any below floor", mode: ModeAny, input: "$100,000 - $150,000 per year", expect: false},
		{name: "any max above floor", mode: ModeAny, input: "$150,000 - $170,000 per year", expect: true},
		{name: "min below floor", mode: ModeMin, input: "$150,000 - $170,000", expect: false},
		{name: "max at floor", mode: ModeMax, input: "$140,000 - $160,000", expect: true},
		{name: "avg below floor", mode: ModeAvg, input: "$150,000 - $165,000", expect: false},
		{name: "avg at floor", mode: ModeAvg, input: "$150,000 - $170,000", expect: true},
		{name: "single amount below floor", mode: ModeAny, input: "Up to $120k", expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newExtractor(t, 160000, tt.mode)
			if got := e.MeetsThreshold(tt.input); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestCompareUnknownModeFails(t *testing.T) {
	if compare(Range{Min: 200000, Max: 300000}, 160000, Mode("median")) {
		t.Fatalf("expected unknown mode to fail the threshold")
	}

	if _, err := New(Config{Mode: "median"}); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestParseModeAliases(t *testing.T) {
	mode, err := ParseMode(" Either ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mode != ModeAny {
		t.Fatalf("expected any, got %s", mode)
	}

	mode, err = ParseMode("")
	if err != nil || mode != DefaultMode {
		t.Fatalf("expected default mode, got %s (%v)", mode, err)
	}
}

func TestAssess(t *testing.T) {
	e := newExtractor(t, 160000, ModeAny)

	a := e.Assess("Salary range: $150,000 - $170,000")
	if !a.HasSignal || !a.MeetsThreshold {
		t.Fatalf("unexpected assessment: %+v", a)
	}
	if a.Range == nil || a.Range.Min != 150000 || a.Range.Max != 170000 {
		t.Fatalf("unexpected range: %+v", a.Range)
	}
	if a.MatchedText != "$150,000 - $170,000" {
		t.Fatalf("unexpected matched text: %q", a.MatchedText)
	}
}
