package salary

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Mode selects which end of a parsed range must reach the floor.
type Mode string

const (
	ModeMin Mode = "min"
	ModeMax Mode = "max"
	ModeAvg Mode = "avg"
	// ModeAny passes when either end of the range reaches the floor.
	ModeAny Mode = "any"

	DefaultFloor = 160000
	DefaultMode  = ModeAny

	// Amounts below this value are treated as k-shorthand.
	shorthandLimit = 1000
)

var ErrParse = errors.New("salary parse failure")

// DefaultKeywords is the vocabulary used to detect compensation signals.
var DefaultKeywords = []string{
	"salary", "compensation", "pay", "wage",
	"$", "€", "£", "¥", "usd", "eur", "gbp",
	"k/year", "k per year", "k annually",
	"/year", "/yr", "per year", "annually",
	"/hour", "/hr", "per hour", "hourly",
	"base pay", "total comp", "cash compensation", "range:",
	"paying", "offered", "salary range",
	"100k", "150k", "160k", "200k", "250k", "300k",
}

// DefaultPatterns are tried in order, most specific first.
var DefaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*[-–to]+\s*\$?\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)\$\s*(\d{1,3})k\s*[-–to]+\s*\$?\s*(\d{1,3})k`),
	regexp.MustCompile(`(?i)(\d{1,3})k?\s*[-–to]+\s*(\d{1,3})k`),
	regexp.MustCompile(`(?i)\$\s*(\d{1,3}(?:,\d{3})*)`),
	regexp.MustCompile(`(?i)(\d{1,3})k(?:\s|/|$)`),
}

var nanLike = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"n/a":  {},
}

// Config holds the extractor settings. Zero values fall back to defaults.
type Config struct {
	Floor    float64
	Mode     Mode
	Keywords []string
	Patterns []*regexp.Regexp
}

// Match is the outcome of ExtractSalaryText.
type Match struct {
	Matched    bool
	Text       string
	RawAmounts []string
}

// Range is a normalized annual range.
type Range struct {
	Min float64
	Max float64
}

// Assessment bundles everything known about the compensation of one text.
type Assessment struct {
	HasSignal      bool     `json:"has_signal"`
	MatchedText    string   `json:"matched_text,omitempty"`
	RawAmounts     []string `json:"raw_amounts,omitempty"`
	Range          *Range   `json:"range,omitempty"`
	MeetsThreshold bool     `json:"meets_threshold"`
}

type Extractor struct {
	floor    float64
	mode     Mode
	keywords []string
	patterns []*regexp.Regexp
}

// New creates an extractor. It returns an error for an unknown mode.
func New(cfg Config) (*Extractor, error) {
	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}

	floor := cfg.Floor
	if floor <= 0 {
		floor = DefaultFloor
	}

	keywords := cfg.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	return &Extractor{
		floor:    floor,
		mode:     mode,
		keywords: lowered,
		patterns: patterns,
	}, nil
}

// ParseMode validates a mode name. Empty input yields the default mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultMode, nil
	case ModeMin:
		return ModeMin, nil
	case ModeMax:
		return ModeMax, nil
	case ModeAvg:
		return ModeAvg, nil
	case ModeAny, "either":
		return ModeAny, nil
	default:
		return "", fmt.Errorf("unknown salary mode %q", s)
	}
}

func (e *Extractor) Floor() float64 { return e.floor }

func (e *Extractor) Mode() Mode { return e.mode }

// HasSalarySignal reports whether text mentions any compensation keyword.
func (e *Extractor) HasSalarySignal(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return false
	}
	if _, ok := nanLike[lower]; ok {
		return false
	}

	for _, kw := range e.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return false
}

// ExtractSalaryText returns the first pattern match. When nothing matches but a
// keyword is present the match is keyword-only: Matched with no text.
func (e *Extractor) ExtractSalaryText(text string) Match {
	if strings.TrimSpace(text) == "" {
		return Match{}
	}

	for _, re := range e.patterns {
		groups := re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}

		amounts := make([]string, 0, 2)
		for _, g := range groups[1:] {
			if g != "" && len(amounts) < 2 {
				amounts = append(amounts, g)
			}
		}

		return Match{
			Matched:    true,
			Text:       strings.TrimSpace(groups[0]),
			RawAmounts: amounts,
		}
	}

	if e.HasSalarySignal(text) {
		return Match{Matched: true}
	}

	return Match{}
}

// NormalizeAmount parses a raw amount. Values below 1000 are read as
// k-shorthand, so "5" becomes 5000 even when it was an hourly rate.
func NormalizeAmount(raw string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrParse)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q: %v", ErrParse, raw, err)
	}

	if value < shorthandLimit {
		value *= 1000
	}

	return value, nil
}

// ParseRange extracts and normalizes a range. A single amount yields min == max.
func (e *Extractor) ParseRange(text string) (Range, bool) {
	return rangeFrom(e.ExtractSalaryText(text))
}

func rangeFrom(m Match) (Range, bool) {
	values := make([]float64, 0, len(m.RawAmounts))
	for _, raw := range m.RawAmounts {
		v, err := NormalizeAmount(raw)
		if err != nil {
			continue
		}
		values = append(values, v)
	}

	switch len(values) {
	case 0:
		return Range{}, false
	case 1:
		return Range{Min: values[0], Max: values[0]}, true
	default:
		return Range{Min: values[0], Max: values[1]}, true
	}
}

// MeetsThreshold decides whether text passes the configured floor.
// Missing or unparseable compensation never disqualifies a posting.
func (e *Extractor) MeetsThreshold(text string) bool {
	return e.Assess(text).MeetsThreshold
}

// Assess runs every step and returns the combined result.
func (e *Extractor) Assess(text string) Assessment {
	if !e.HasSalarySignal(text) {
		return Assessment{MeetsThreshold: true}
	}

	m := e.ExtractSalaryText(text)
	a := Assessment{
		HasSignal:   true,
		MatchedText: m.Text,
		RawAmounts:  m.RawAmounts,
	}

	r, ok := rangeFrom(m)
	if !ok {
		a.MeetsThreshold = true
		return a
	}

	a.Range = &r
	a.MeetsThreshold = compare(r, e.floor, e.mode)
	return a
}

func compare(r Range, floor float64, mode Mode) bool {
	switch mode {
	case ModeMin:
		return r.Min >= floor
	case ModeMax:
		return r.Max >= floor
	case ModeAvg:
		return (r.Min+r.Max)/2 >= floor
	case ModeAny:
		return r.Min >= floor || r.Max >= floor
	default:
		return false
	}
}
