package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spigell/jobfit/internal/posting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func samplePostings() []posting.RawPosting {
	return []posting.RawPosting{
		{ID: "1", Title: "Senior Go Engineer", Company: "Acme"},
		{ID: "2", Title: "Go Intern", Company: "Globex"},
		{ID: "3", Title: "Platform Engineer", Company: "Initech"},
	}
}

func ids(postings []posting.RawPosting) []string {
	out := make([]string, 0, len(postings))
	for _, p := range postings {
		out = append(out, p.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter Filter
		expect []string
	}{
		{name: "companies case insensitive", filter: NewExcludedCompanies([]string{" acme "}, nil), expect: []string{"2", "3"}},
		{name: "title keywords", filter: NewExcludedTitles([]string{"INTERN"}, nil), expect: []string{"1", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, step, err := tt.filter.Apply(context.Background(), samplePostings())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equal(ids(got), tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, ids(got))
			}
			if step.Initial != 3 || step.Dropped != 1 || step.Left != 2 {
				t.Fatalf("unexpected step: %+v", step)
			}
		})
	}
}

func TestEmptyFiltersAreDisabled(t *testing.T) {
	for _, f := range []Filter{
		NewExcludedCompanies(nil, nil),
		NewExcludedTitles([]string{" "}, nil),
		NewExcludeFile("", nil),
	} {
		if f.IsEnabled() {
			t.Fatalf("expected %s to be disabled", f.Name())
		}
	}
}

func TestExcludeFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.txt")

	f := NewExcludeFile(path, nil)
	got, _, err := f.Apply(context.Background(), samplePostings())
	if err != nil {
		t.Fatalf("missing file must exclude nothing: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected all postings, got %v", ids(got))
	}

	if err := os.WriteFile(path, []byte("# reviewed manually\n\n3\n"), 0o644); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}
	if err := AppendToExcludeFile(path, samplePostings()[:1]); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, step, err := f.Apply(context.Background(), samplePostings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equal(ids(got), []string{"2"}) || step.Dropped != 2 {
		t.Fatalf("unexpected result %v (%+v)", ids(got), step)
	}
}

type failingFilter struct{}

func (failingFilter) Name() string    { return "broken" }
func (failingFilter) IsEnabled() bool { return true }
func (failingFilter) Apply(context.Context, []posting.RawPosting) ([]posting.RawPosting, Step, error) {
	return nil, Step{}, errors.New("boom")
}

func TestRunFilters(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	f := New([]Filter{
		NewExcludedCompanies([]string{"Acme"}, nil),
		NewExcludedTitles(nil, nil),
		NewExcludedTitles([]string{"intern"}, nil),
	}, zap.New(core))

	got, err := f.RunFilters(context.Background(), samplePostings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equal(ids(got), []string{"3"}) {
		t.Fatalf("unexpected postings: %v", ids(got))
	}
	if logs.FilterMessage("filter step").Len() != 2 {
		t.Fatalf("expected two step entries, got %d", logs.FilterMessage("filter step").Len())
	}
	if logs.FilterMessage("filter disabled").Len() != 1 {
		t.Fatalf("expected one disabled entry")
	}

	if _, err := New([]Filter{failingFilter{}}, nil).RunFilters(context.Background(), samplePostings()); err == nil {
		t.Fatalf("expected error from failing step")
	}
}
