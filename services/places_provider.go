package services

import (
	"context"
	"errors"
	"fmt"
	"go-places/models"
	"go-places/utils/logger"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const maxPlacesPayload = 4 << 20

var ErrPayloadTooLarge = errors.New("places payload too large")

// PlacesProvider runs a nearby search and returns the raw JSON payload.
type PlacesProvider interface {
	NearbySearch(ctx context.Context, location models.Coordinate, radiusMeters float64) ([]byte, error)
}

// PlacesClient calls a Google Places style nearby-search endpoint. The
// catalog endpoint served by this binary speaks the same shape.
type PlacesClient struct {
	baseURL    string
	apiKey     string
	maxBytes   int64
	httpClient *http.Client
}

func NewPlacesClient(baseURL, apiKey string, timeout time.Duration) *PlacesClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PlacesClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxBytes:   maxPlacesPayload,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NearbySearch returns the response body of a 200 reply. Bodies larger than
// the payload limit fail with ErrPayloadTooLarge.
func (c *PlacesClient) NearbySearch(ctx context.Context, location models.Coordinate, radiusMeters float64) ([]byte, error) {
	reqURL, err := c.buildURL(location, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("build places url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create places request: %w", err)
	}

	// Send request
	t0 := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places request returned %s", resp.Status)
	}
	// Read one byte past the limit to tell a full body from a cut one
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read places response: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrPayloadTooLarge, c.maxBytes)
	}
	logger.L().Debug("places response", "bytes", len(body), "duration_ms", time.Since(t0).Milliseconds())
	return body, nil
}

func (c *PlacesClient) buildURL(location models.Coordinate, radiusMeters float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	params := u.Query()
	params.Set("location", fmt.Sprintf("%f,%f", location.Latitude, location.Longitude))
	params.Set("radius", strconv.FormatFloat(radiusMeters, 'f', 0, 64))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}
