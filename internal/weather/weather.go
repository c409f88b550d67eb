// Package weather reads the current temperature and conditions from the
// Meteomatics API.
package weather

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"caredash/internal/config"
	"caredash/internal/metrics"
	"caredash/internal/models"
)

// Shown when the weather service cannot be reached.
const (
	FallbackTemperature = 7.0
	FallbackCondition   = "Sonnig"
)

const parameters = "t_2m:C,weather_symbol_1h:idx"

var ErrMalformedResponse = errors.New("malformed weather response")

// StatusError is returned when the weather service answers with a non-2xx status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather service returned HTTP %d for %s", e.Code, e.URL)
}

// Client talks to the Meteomatics token and measurement endpoints.
type Client struct {
	client    *http.Client
	tokenURL  string
	apiURL    string
	username  string
	password  string
	latitude  float64
	longitude float64
	now       func() time.Time
}

// NewClient creates a weather client from configuration.
func NewClient(cfg *config.Config) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.WeatherTLSInsecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		client: &http.Client{
			Timeout:   cfg.WeatherTimeout,
			Transport: transport,
		},
		tokenURL:  cfg.WeatherTokenURL,
		apiURL:    strings.TrimRight(cfg.WeatherAPIURL, "/"),
		username:  cfg.WeatherUsername,
		password:  cfg.WeatherPassword,
		latitude:  cfg.WeatherLatitude,
		longitude: cfg.WeatherLongitude,
		now:       time.Now,
	}
}

// Current returns the current weather. Any failure to reach or parse the
// weather service yields the fallback reading instead of an error.
func (c *Client) Current(ctx context.Context) models.Weather {
	w, err := c.Fetch(ctx)
	if err != nil {
		slog.Warn("using fallback weather", "error", err)
		metrics.RecordWeatherFallback()
		return Fallback(c.now())
	}
	return w
}

// Fallback returns the reading shown when the weather service fails.
func Fallback(now time.Time) models.Weather {
	return models.Weather{
		Condition:   FallbackCondition,
		Temperature: FallbackTemperature,
		Fallback:    true,
		FetchedAt:   now,
	}
}

// Format renders a reading the way the dashboard shows it, e.g. "Sonnig, 7°C".
func Format(w models.Weather) string {
	return w.Condition + ", " + strconv.FormatFloat(w.Temperature, 'f', -1, 64) + "°C"
}

// Fetch requests an access token and then the current measurements.
func (c *Client) Fetch(ctx context.Context) (models.Weather, error) {
	token, err := c.token(ctx)
	if err != nil {
		return models.Weather{}, err
	}

	now := c.now()
	endpoint := fmt.Sprintf("%s/%s/%s/%s,%s/json?model=mix&access_token=%s",
		c.apiURL,
		now.UTC().Format(time.RFC3339),
		parameters,
		strconv.FormatFloat(c.latitude, 'f', -1, 64),
		strconv.FormatFloat(c.longitude, 'f', -1, 64),
		url.QueryEscape(token),
	)

	var body measurementResponse
	if err := c.getJSON(ctx, endpoint, nil, &body); err != nil {
		return models.Weather{}, err
	}

	temp, ok := body.value("t_2m:C")
	if !ok {
		return models.Weather{}, fmt.Errorf("%w: missing temperature", ErrMalformedResponse)
	}

	condition := FallbackCondition
	if symbol, ok := body.value("weather_symbol_1h:idx"); ok {
		condition = Condition(int(symbol))
	}

	return models.Weather{
		Condition:   condition,
		Temperature: temp,
		FetchedAt:   now,
	}, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	var body struct {
		AccessToken string `json:"access_token"`
	}
	auth := func(req *http.Request) { req.SetBasicAuth(c.username, c.password) }
	if err := c.getJSON(ctx, c.tokenURL, auth, &body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: missing access_token", ErrMalformedResponse)
	}
	return body.AccessToken, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, prepare func(*http.Request), dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Caredash/1.0")
	if prepare != nil {
		prepare(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Strip the token from the reported URL
		reported := endpoint
		if i := strings.IndexByte(reported, '?'); i >= 0 {
			reported = reported[:i]
		}
		io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: reported, Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

type measurementResponse struct {
	Data []struct {
		Parameter   string `json:"parameter"`
		Coordinates []struct {
			Dates []struct {
				Date  string  `json:"date"`
				Value float64 `json:"value"`
			} `json:"dates"`
		} `json:"coordinates"`
	} `json:"data"`
}

// value returns the first value reported for parameter.
func (r measurementResponse) value(parameter string) (float64, bool) {
	for _, d := range r.Data {
		if d.Parameter != parameter {
			continue
		}
		if len(d.Coordinates) == 0 || len(d.Coordinates[0].Dates) == 0 {
			return 0, false
		}
		return d.Coordinates[0].Dates[0].Value, true
	}
	return 0, false
}
