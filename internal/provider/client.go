// Package provider issues outbound requests to the third-party data sources
// and decodes their responses into typed structs.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lox/cityexplorer/internal/httputil"
	"github.com/lox/cityexplorer/internal/metrics"
)

// Name identifies one of the external providers.
type Name string

const (
	Geocode Name = "geocode"
	Weather Name = "weather"
	Trails  Name = "trails"
	Movies  Name = "movies"
)

const (
	DefaultGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
	DefaultWeatherURL = "https://api.darksky.net/forecast"
	DefaultTrailsURL  = "https://www.hikingproject.com/data/get-trails"
	DefaultMoviesURL  = "https://api.themoviedb.org/3/search/movie"

	// TrailRadiusMiles is the fixed search radius sent to the trails provider.
	TrailRadiusMiles = 10
)

// Request is a fully formed provider request. Target is deterministic for a
// given input and credential.
type Request struct {
	Provider Name
	Target   string
	secret   string
}

// Redacted returns the target with the provider credential masked.
func (r Request) Redacted() string {
	if r.secret == "" {
		return r.Target
	}
	target := r.Target
	for _, s := range []string{url.QueryEscape(r.secret), url.PathEscape(r.secret), r.secret} {
		target = strings.ReplaceAll(target, s, "REDACTED")
	}
	return target
}

// TransportError is returned for every unusable provider outcome: transport
// failure, timeout, non-2xx status or a malformed body.
type TransportError struct {
	Provider Name
	Target   string // redacted
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("So sorry, something went wrong. url: %s", e.Target)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Endpoints holds the base URL of each provider.
type Endpoints struct {
	Geocode string
	Weather string
	Trails  string
	Movies  string
}

// DefaultEndpoints returns the production provider URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Geocode: DefaultGeocodeURL,
		Weather: DefaultWeatherURL,
		Trails:  DefaultTrailsURL,
		Movies:  DefaultMoviesURL,
	}
}

// Keys holds one credential per provider.
type Keys struct {
	Geocode string
	Weather string
	Trails  string
	Movies  string
}

type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
	keys       Keys
	timeout    time.Duration
}

// NewClient creates a provider client. Every call is bounded by timeout.
func NewClient(endpoints Endpoints, keys Keys, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = httputil.DefaultTimeout
	}
	return &Client{
		httpClient: httputil.NewClient(timeout),
		endpoints:  endpoints,
		keys:       keys,
		timeout:    timeout,
	}
}

func (c *Client) GeocodeRequest(query string) Request {
	v := url.Values{}
	v.Set("address", query)
	v.Set("key", c.keys.Geocode)
	return Request{
		Provider: Geocode,
		Target:   c.endpoints.Geocode + "?" + v.Encode(),
		secret:   c.keys.Geocode,
	}
}

func (c *Client) WeatherRequest(lat, lon float64) Request {
	return Request{
		Provider: Weather,
		Target: fmt.Sprintf("%s/%s/%s,%s",
			strings.TrimRight(c.endpoints.Weather, "/"),
			url.PathEscape(c.keys.Weather), formatCoord(lat), formatCoord(lon)),
		secret: c.keys.Weather,
	}
}

func (c *Client) TrailsRequest(lat, lon float64) Request {
	v := url.Values{}
	v.Set("lat", formatCoord(lat))
	v.Set("lon", formatCoord(lon))
	v.Set("maxDistance", strconv.Itoa(TrailRadiusMiles))
	v.Set("key", c.keys.Trails)
	return Request{
		Provider: Trails,
		Target:   c.endpoints.Trails + "?" + v.Encode(),
		secret:   c.keys.Trails,
	}
}

func (c *Client) MoviesRequest(query string) Request {
	v := url.Values{}
	v.Set("api_key", c.keys.Movies)
	v.Set("query", query)
	v.Set("page", "1")
	return Request{
		Provider: Movies,
		Target:   c.endpoints.Movies + "?" + v.Encode(),
		secret:   c.keys.Movies,
	}
}

// Fetch performs the request and returns the raw response body.
func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	body, status, err := c.do(ctx, req)
	metrics.ProviderLatency.WithLabelValues(string(req.Provider)).Observe(time.Since(start).Seconds())
	metrics.ProviderCallsTotal.WithLabelValues(string(req.Provider), status).Inc()

	if err != nil {
		return nil, &TransportError{Provider: req.Provider, Target: req.Redacted(), Err: err}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, req Request) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Target, nil)
	if err != nil {
		return nil, "error", fmt.Errorf("create request: %w", scrub(err, req))
	}
	httpReq.Header.Set("User-Agent", httputil.UserAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "error", fmt.Errorf("fetch %s: %w", req.Provider, scrub(err, req))
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, status, fmt.Errorf("fetch %s: status %d: %s", req.Provider, resp.StatusCode, string(b))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, status, fmt.Errorf("read body: %w", scrub(err, req))
	}
	return body, status, nil
}

// fetchJSON fetches req and decodes the body into v. A decode failure is a
// TransportError like any other unusable response.
func (c *Client) fetchJSON(ctx context.Context, req Request, v any) error {
	body, err := c.Fetch(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &TransportError{Provider: req.Provider, Target: req.Redacted(), Err: fmt.Errorf("unmarshal: %w", err)}
	}
	return nil
}

func malformed(req Request, format string, args ...any) error {
	return &TransportError{Provider: req.Provider, Target: req.Redacted(), Err: fmt.Errorf(format, args...)}
}

// scrub replaces the URL embedded in net/http errors so credentials are not
// carried into logs.
func scrub(err error, req Request) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: req.Redacted(), Err: urlErr.Err}
	}
	return err
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
