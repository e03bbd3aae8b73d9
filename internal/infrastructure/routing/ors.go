package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	geocodePath    = "/geocode/search"
	directionsPath = "/v2/directions/driving-car"
)

// Client talks to openrouteservice: places are geocoded, then the driving distance
// between them is taken from the directions API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Limiter *rate.Limiter
}

// New returns a client limited to ratePerSec outbound calls with a small burst.
func New(baseURL, apiKey string, ratePerSec float64) *Client {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Limiter: rate.NewLimiter(rate.Limit(ratePerSec), 4),
	}
}

type point struct {
	Lon float64
	Lat float64
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
		} `json:"summary"`
	} `json:"routes"`
}

// DistanceKm returns the driving distance between two free-text places.
func (c *Client) DistanceKm(ctx context.Context, from, to string) (decimal.Decimal, error) {
	src, err := c.geocode(ctx, from)
	if err != nil {
		return decimal.Zero, err
	}
	dst, err := c.geocode(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}
	meters, err := c.route(ctx, src, dst)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(meters).Div(decimal.NewFromInt(1000)), nil
}

func (c *Client) geocode(ctx context.Context, place string) (point, error) {
	q := url.Values{}
	q.Set("api_key", c.APIKey)
	q.Set("text", place)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+geocodePath+"?"+q.Encode(), nil)
	if err != nil {
		return point{}, err
	}
	var out geocodeResponse
	if err := c.do(req, &out); err != nil {
		return point{}, fmt.Errorf("geocode %q: %w", place, err)
	}
	if len(out.Features) == 0 || len(out.Features[0].Geometry.Coordinates) < 2 {
		return point{}, fmt.Errorf("geocode %q: no match", place)
	}
	coords := out.Features[0].Geometry.Coordinates
	return point{Lon: coords[0], Lat: coords[1]}, nil
}

func (c *Client) route(ctx context.Context, src, dst point) (float64, error) {
	body, err := json.Marshal(map[string]interface{}{
		"coordinates": [][]float64{{src.Lon, src.Lat}, {dst.Lon, dst.Lat}},
	})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+directionsPath, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	var out directionsResponse
	if err := c.do(req, &out); err != nil {
		return 0, fmt.Errorf("directions: %w", err)
	}
	if len(out.Routes) == 0 {
		return 0, fmt.Errorf("directions: no route")
	}
	return out.Routes[0].Summary.Distance, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(req.Context()); err != nil {
			return err
		}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
