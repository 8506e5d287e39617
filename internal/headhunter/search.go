package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

const (
	SearchPath = "/vacancies"
)

// SearchParams mirrors the query of GET /vacancies. Field values come from the
// config file through mapstructure; hhparam names the query key.
type SearchParams struct {
	Text        string   `mapstructure:"text" hhparam:"text"`
	Areas       []int    `mapstructure:"areas" hhparam:"area"`
	OrderBy     string   `mapstructure:"order_by" hhparam:"order_by"`
	Employer    uint     `mapstructure:"employer_id" hhparam:"employer_id"`
	SearchField string   `mapstructure:"search_field" hhparam:"search_field"`
	Schedules   []string `mapstructure:"schedules" hhparam:"schedule"`
	PerPage     string   `mapstructure:"per_page" hhparam:"per_page"`
	Experience  string   `mapstructure:"experience" hhparam:"experience"`
	Period      uint     `mapstructure:"period" hhparam:"period"`
	OnlySalary  bool     `mapstructure:"only_with_salary" hhparam:"only_with_salary"`
}

func (c *Client) search(ctx context.Context, params *SearchParams) (*Vacancies, error) {
	var vacancies []*Vacancy

	if params == nil {
		params = &SearchParams{}
	}

	// Set per_page max as possible. It should be faster.
	if params.PerPage == "" {
		params.PerPage = perPage
	}

	q := buildParams(params)
	apiURLSearch := fmt.Sprintf("%s%s", c.APIURL, SearchPath)

	items, err := c.GetItems(ctx, apiURLSearch, q)
	if err != nil {
		return nil, err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &vacancies,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode vacancies: %w", err)
	}

	return &Vacancies{
		Items: vacancies,
	}, nil
}

func buildParams(params *SearchParams) url.Values {
	q := url.Values{}
	fields := reflect.VisibleFields(reflect.TypeOf(*params))
	for _, field := range fields {
		key := field.Tag.Get("hhparam")
		if key == "" {
			continue
		}

		value := reflect.ValueOf(params).Elem().Field(field.Index[0])
		switch v := value.Interface().(type) {
		case []int:
			for _, item := range v {
				q.Add(key, strconv.Itoa(item))
			}
		case []string:
			for _, item := range v {
				q.Add(key, item)
			}
		case bool:
			if v {
				q.Set(key, "true")
			}
		default:
			s := fmt.Sprintf("%v", v)
			if s != "" && s != "0" {
				q.Set(key, s)
			}
		}
	}

	return q
}
