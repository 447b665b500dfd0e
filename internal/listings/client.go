// Package listings is the HTTP client for the Staya listings backend.
package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/staya/staya-chatbot-go/internal/errors"
	"github.com/staya/staya-chatbot-go/internal/metrics"
)

// maxBodyBytes caps the response body read from the backend.
const maxBodyBytes = 4 << 20

// Client fetches listings near a point. It issues exactly one request per
// call; there is no retry and no caching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewClient creates a listings client. baseURL must end with "/".
// A nil httpClient gets a pooled transport without a client-level timeout;
// the caller's context bounds each request.
func NewClient(baseURL string, httpClient *http.Client, m *metrics.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		metrics:    m,
	}
}

// NearbyURL builds {base}listings?near_long=<long>&near_lat=<lat>.
// Parameter order is fixed and floats use the shortest representation
// that round-trips (e.g. -73.97, 40.78).
func (c *Client) NearbyURL(coords Coordinates) string {
	return fmt.Sprintf("%slistings?near_long=%s&near_lat=%s",
		c.baseURL, formatCoord(coords.Long), formatCoord(coords.Lat))
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Nearby fetches the listings near coords. Any failure (transport error,
// non-2xx status, malformed body) is returned as *errors.ListingsError.
// A 2xx response with an empty array yields an empty, non-nil slice.
func (c *Client) Nearby(ctx context.Context, coords Coordinates) ([]Listing, error) {
	start := time.Now()
	url := c.NearbyURL(coords)

	listings, status, err := c.get(ctx, url)
	if err != nil {
		c.metrics.RecordListingsRequest(status, time.Since(start).Seconds())
		return nil, err
	}
	c.metrics.RecordListingsRequest("success", time.Since(start).Seconds())
	return listings, nil
}

func (c *Client) get(ctx context.Context, url string) ([]Listing, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "error", errors.NewListingsError(url, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "error", errors.NewListingsError(url, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, "http_error", errors.NewListingsError(url, resp.StatusCode, errors.ErrUnexpectedStatus)
	}

	var listings []Listing
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&listings); err != nil {
		return nil, "decode_error", errors.NewListingsError(url, resp.StatusCode, fmt.Errorf("decode body: %w", err))
	}
	if listings == nil {
		// "null" decodes to a nil slice; the backend contract is an array.
		return nil, "decode_error", errors.NewListingsError(url, resp.StatusCode, fmt.Errorf("decode body: %w", errors.ErrMalformedPayload))
	}
	return listings, "success", nil
}
