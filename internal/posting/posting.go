package posting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// RawPosting is one scraped job listing. It is not modified after it is emitted.
type RawPosting struct {
	ID          string `json:"id" mapstructure:"id"`
	Location    string `json:"location,omitempty" mapstructure:"location"`
	Title       string `json:"title,omitempty" mapstructure:"title"`
	Company     string `json:"company,omitempty" mapstructure:"company"`
	Place       string `json:"place,omitempty" mapstructure:"place"`
	Date        string `json:"date,omitempty" mapstructure:"date"`
	DateText    string `json:"date_text,omitempty" mapstructure:"date_text"`
	Link        string `json:"link,omitempty" mapstructure:"link"`
	ApplyLink   string `json:"apply_link,omitempty" mapstructure:"apply_link"`
	Insights    string `json:"insights,omitempty" mapstructure:"insights"`
	Description string `json:"description,omitempty" mapstructure:"description"`
	Skills      string `json:"skills,omitempty" mapstructure:"skills"`
}

// UnmarshalJSON accepts the id as a JSON string or a JSON number, since some
// boards publish numeric job ids.
func (p *RawPosting) UnmarshalJSON(data []byte) error {
	type plain RawPosting
	aux := struct {
		ID json.RawMessage `json:"id"`
		*plain
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.ID)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		p.ID = ""
	case raw[0] == '"':
		return json.Unmarshal(raw, &p.ID)
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("id must be a string or a number: %w", err)
		}
		p.ID = n.String()
	}

	return nil
}

// Fields returns the posting in sink column order.
func (p RawPosting) Fields() []any {
	return []any{
		p.ID, p.Location, p.Title, p.Company, p.Place,
		p.Date, p.DateText, p.Link, p.ApplyLink,
		p.Insights, p.Description, p.Skills,
	}
}

// Columns names the values returned by Fields.
func Columns() []string {
	return []string{
		"Job_ID", "Location", "Title", "Company", "Place",
		"Date", "Date_Text", "Link", "Apply_Link",
		"Insights", "Description", "Skills",
	}
}

// Metrics is reported by a source after every page of postings.
type Metrics struct {
	Page      int
	Processed int
	Skipped   int
	Failed    int
}

// Handlers receive source events. Nil handlers are ignored.
type Handlers struct {
	OnData    func(RawPosting)
	OnMetrics func(Metrics)
	// OnError is terminal: no other handler is called after it.
	OnError func(error)
	OnEnd   func()
}

// Emit passes p to OnData.
func (h Handlers) Emit(p RawPosting) {
	if h.OnData != nil {
		h.OnData(p)
	}
}

// Report passes m to OnMetrics.
func (h Handlers) Report(m Metrics) {
	if h.OnMetrics != nil {
		h.OnMetrics(m)
	}
}

// Fail reports a terminal error and returns it.
func (h Handlers) Fail(err error) error {
	if h.OnError != nil {
		h.OnError(err)
	}
	return err
}

// End signals that the source is exhausted.
func (h Handlers) End() {
	if h.OnEnd != nil {
		h.OnEnd()
	}
}

// Source pushes postings to handlers. Run blocks until the source is exhausted,
// fails or ctx is done.
type Source interface {
	Run(ctx context.Context, h Handlers) error
}

// Collect runs src and gathers every posting it emits.
func Collect(ctx context.Context, src Source, h Handlers) ([]RawPosting, error) {
	var postings []RawPosting

	onData := h.OnData
	h.OnData = func(p RawPosting) {
		postings = append(postings, p)
		if onData != nil {
			onData(p)
		}
	}

	if err := src.Run(ctx, h); err != nil {
		return postings, err
	}

	return postings, nil
}
