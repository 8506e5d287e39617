package headhunter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL    = "https://api.hh.ru"
	userAgent = "spigell/jobfit (spigelly@gmail.com)"
	// Max value for search per page.
	perPage = "100"

	vacancyPath = "/vacancies/%s"

	// DefaultRequestsPerSecond keeps detail fetches under the hh.ru anonymous quota.
	DefaultRequestsPerSecond = 2
)

type Client struct {
	// token is optional: vacancy search and details are public.
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	// Limiter paces every request. Nil means no limit.
	Limiter *rate.Limiter
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		token:  strings.TrimSpace(token),
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
		Limiter:   rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
	}
}

// SetRateLimit replaces the limiter. A non-positive rps disables limiting.
func (c *Client) SetRateLimit(rps float64) {
	if rps <= 0 {
		c.Limiter = nil
		return
	}
	c.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

func (c *Client) Search(ctx context.Context, params *SearchParams) (*Vacancies, error) {
	return c.search(ctx, params)
}

// GetVacancy fetches the full vacancy including description and key skills.
func (c *Client) GetVacancy(ctx context.Context, id string) (*Vacancy, error) {
	var vacancy Vacancy
	url := c.APIURL + fmt.Sprintf(vacancyPath, id)

	if err := c.getJSON(ctx, url, nil, &vacancy); err != nil {
		return nil, fmt.Errorf("get vacancy %s: %w", id, err)
	}

	return &vacancy, nil
}
