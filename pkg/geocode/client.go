// Package geocode wraps the BAN address API (api-adresse.data.gouv.fr)
// restricted to Paris. One query returns at most one candidate.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api-adresse.data.gouv.fr"
	defaultCityCode = "75056" // Paris
)

// Result is one geocoded address. Matched is false when the service found
// no candidate; that is not an error.
type Result struct {
	Matched   bool
	Label     string
	Latitude  float64
	Longitude float64
	// District is read from the last two digits of the postal code;
	// 1 when the postal code is absent or not a 75XXX code.
	District int
}

// Client queries the BAN geocoding service.
type Client struct {
	baseURL  string
	cityCode string
	http     *http.Client
	limiter  *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the service URL, mainly for tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithCityCode restricts results to another INSEE city code.
func WithCityCode(code string) ClientOption {
	return func(c *Client) { c.cityCode = code }
}

// WithHTTPClient injects the HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps requests per second against the public service.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient returns a geocoding client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		cityCode: defaultCityCode,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type banResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // lon, lat
		} `json:"geometry"`
		Properties struct {
			Label    string `json:"label"`
			Postcode string `json:"postcode"`
		} `json:"properties"`
	} `json:"features"`
}

// Search geocodes a free-text address. A service or decode failure is an
// error; an empty candidate list yields Matched=false.
func (c *Client) Search(ctx context.Context, address string) (Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Result{}, eris.Wrap(err, "geocode: rate limiter")
		}
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("citycode", c.cityCode)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/?"+q.Encode(), nil)
	if err != nil {
		return Result{}, eris.Wrap(err, "geocode: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, eris.Wrap(err, "geocode: call service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, eris.Errorf("geocode: service returned %d: %s", resp.StatusCode, body)
	}

	var ban banResponse
	if err := json.NewDecoder(resp.Body).Decode(&ban); err != nil {
		return Result{}, eris.Wrap(err, "geocode: decode response")
	}

	if len(ban.Features) == 0 {
		zap.L().Info("geocode: no match", zap.String("address", address))
		return Result{}, nil
	}

	f := ban.Features[0]
	if len(f.Geometry.Coordinates) < 2 {
		return Result{}, eris.New("geocode: malformed coordinates")
	}
	return Result{
		Matched:   true,
		Label:     f.Properties.Label,
		Longitude: f.Geometry.Coordinates[0],
		Latitude:  f.Geometry.Coordinates[1],
		District:  districtFromPostcode(f.Properties.Postcode),
	}, nil
}

func districtFromPostcode(postcode string) int {
	if len(postcode) == 5 && postcode[:2] == "75" {
		if n, err := strconv.Atoi(postcode[3:]); err == nil && n >= 1 && n <= 20 {
			return n
		}
	}
	return 1
}
