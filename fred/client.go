// Package fred retrieves monthly economic series from the FRED observations
// API. The pipeline depends only on the Fetcher interface so tests and
// offline runs can substitute a static source.
package fred

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Allisterh/inflation-forecasting/timeseries"
	"github.com/goccy/go-json"
	"github.com/sethvargo/go-retry"
)

var (
	ErrDataUnavailable = errors.New("series data unavailable")
	ErrNoAPIKey        = errors.New("no api key")
)

const (
	DefaultBaseURL    = "https://api.stlouisfed.org/fred/series/observations"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3

	observationDateFormat = "2006-01-02"
)

// Fetcher retrieves named monthly series over a date range. Implementations
// return every requested series or fail with ErrDataUnavailable.
type Fetcher interface {
	Fetch(ctx context.Context, seriesIDs []string, from, to time.Time) (map[string]*timeseries.Monthly, error)
}

// ClientOptions configures the HTTP client. A nil options uses defaults.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint64
}

func NewDefaultClientOptions() *ClientOptions {
	return &ClientOptions{
		BaseURL:    DefaultBaseURL,
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}

// Client fetches series over HTTP with a bounded retry on transient
// failures. Server errors and network errors are retried; a missing series
// or empty range is not.
type Client struct {
	opt        *ClientOptions
	httpClient *http.Client
}

func NewClient(opt *ClientOptions) (*Client, error) {
	if opt == nil {
		opt = NewDefaultClientOptions()
	}
	if opt.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if opt.BaseURL == "" {
		opt.BaseURL = DefaultBaseURL
	}
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultTimeout
	}
	return &Client{
		opt:        opt,
		httpClient: &http.Client{Timeout: opt.Timeout},
	}, nil
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Fetch retrieves each requested series. All series must resolve for the
// fetch to succeed since the transformer requires a fully aligned dataset.
func (c *Client) Fetch(ctx context.Context, seriesIDs []string, from, to time.Time) (map[string]*timeseries.Monthly, error) {
	series := make(map[string]*timeseries.Monthly, len(seriesIDs))
	for _, id := range seriesIDs {
		s, err := c.fetchSeries(ctx, id, from, to)
		if err != nil {
			return nil, err
		}
		series[id] = s
	}
	return series, nil
}

func (c *Client) fetchSeries(ctx context.Context, id string, from, to time.Time) (*timeseries.Monthly, error) {
	q := url.Values{}
	q.Set("series_id", id)
	q.Set("api_key", c.opt.APIKey)
	q.Set("file_type", "json")
	q.Set("frequency", "m")
	q.Set("observation_start", from.Format(observationDateFormat))
	q.Set("observation_end", to.Format(observationDateFormat))
	reqURL := c.opt.BaseURL + "?" + q.Encode()

	var body []byte
	backoff := retry.WithMaxRetries(c.opt.MaxRetries, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("series %s returned status %d", id, resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("series %s returned status %d, %w", id, resp.StatusCode, ErrDataUnavailable)
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to fetch series %s, %w", id, err)
	}

	var obsResp observationsResponse
	if err := json.Unmarshal(body, &obsResp); err != nil {
		return nil, fmt.Errorf("unable to decode series %s, %w", id, err)
	}

	t := make([]time.Time, 0, len(obsResp.Observations))
	v := make([]float64, 0, len(obsResp.Observations))
	for _, obs := range obsResp.Observations {
		// FRED reports unavailable observations as "."
		if obs.Value == "." {
			continue
		}
		obsT, err := time.Parse(observationDateFormat, obs.Date)
		if err != nil {
			return nil, fmt.Errorf("unable to parse observation date %q for series %s, %w", obs.Date, id, err)
		}
		val, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse observation value %q for series %s, %w", obs.Value, id, err)
		}
		t = append(t, obsT)
		v = append(v, val)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("series %s has no observations in range, %w", id, ErrDataUnavailable)
	}

	s, err := timeseries.NewMonthly(t, v)
	if err != nil {
		return nil, fmt.Errorf("series %s, %w", id, err)
	}
	return s, nil
}
