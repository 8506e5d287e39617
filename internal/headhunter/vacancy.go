package headhunter

import (
	"fmt"
	"strings"

	"github.com/spigell/jobfit/internal/posting"
	"golang.org/x/net/html"
)

type Vacancies struct {
	Items []*Vacancy
}

type Named struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Salary struct {
	From     int    `json:"from,omitempty"`
	To       int    `json:"to,omitempty"`
	Currency string `json:"currency,omitempty"`
	Gross    bool   `json:"gross,omitempty"`
}

type Employer struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
}

type Vacancy struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name,omitempty"`
	Area              Named    `json:"area,omitempty"`
	Salary            *Salary  `json:"salary,omitempty"`
	Experience        Named    `json:"experience,omitempty"`
	Schedule          Named    `json:"schedule,omitempty"`
	Employment        Named    `json:"employment,omitempty"`
	Employer          Employer `json:"employer,omitempty"`
	AlternateURL      string   `json:"alternate_url,omitempty"`
	ApplyAlternateURL string   `json:"apply_alternate_url,omitempty"`
	Description       string   `json:"description,omitempty"`
	KeySkills         []Named  `json:"key_skills,omitempty"`
	Archived          bool     `json:"archived,omitempty"`
	Snipet            struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

// ToPosting maps a vacancy to a raw posting. The structured salary goes to insights.
func (va *Vacancy) ToPosting() posting.RawPosting {
	date := va.PublishedAt
	if len(date) >= len("2006-01-02") {
		date = date[:len("2006-01-02")]
	}

	apply := va.ApplyAlternateURL
	if apply == "" {
		apply = va.AlternateURL
	}

	description := htmlToText(va.Description)
	if description == "" {
		description = strings.TrimSpace(strings.Join([]string{
			htmlToText(va.Snipet.Requirement),
			htmlToText(va.Snipet.Responsibility),
		}, "\n"))
	}

	skills := make([]string, 0, len(va.KeySkills))
	for _, s := range va.KeySkills {
		if s.Name != "" {
			skills = append(skills, s.Name)
		}
	}

	return posting.RawPosting{
		ID:          va.ID,
		Location:    va.Area.Name,
		Title:       va.Name,
		Company:     va.Employer.Name,
		Place:       va.Schedule.Name,
		Date:        date,
		DateText:    va.PublishedAt,
		Link:        va.AlternateURL,
		ApplyLink:   apply,
		Insights:    va.insights(),
		Description: description,
		Skills:      strings.Join(skills, ", "),
	}
}

func (va *Vacancy) insights() string {
	var parts []string
	for _, s := range []string{va.Experience.Name, va.Employment.Name} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if text := va.Salary.String(); text != "" {
		parts = append(parts, "salary: "+text)
	}
	return strings.Join(parts, " · ")
}

func (s *Salary) String() string {
	if s == nil || (s.From == 0 && s.To == 0) {
		return ""
	}

	switch {
	case s.From != 0 && s.To != 0:
		return strings.TrimSpace(fmt.Sprintf("%d-%d %s", s.From, s.To, s.Currency))
	case s.From != 0:
		return strings.TrimSpace(fmt.Sprintf("from %d %s", s.From, s.Currency))
	default:
		return strings.TrimSpace(fmt.Sprintf("up to %d %s", s.To, s.Currency))
	}
}

var blockTags = map[string]bool{
	"p": true, "br": true, "li": true, "div": true,
	"ul": true, "ol": true, "h1": true, "h2": true, "h3": true, "h4": true,
}

// htmlToText keeps the text of an HTML fragment, one line per block element.
func htmlToText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(html.UnescapeString(fragment))
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseLines(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				b.WriteString("\n")
			}
		}
	}
}

func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
