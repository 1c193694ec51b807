package amap

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

	apperrors "trafficwatch/internal/platform/errors"
)

const (
	DefaultBaseURL  = "https://restapi.amap.com/v3"
	drivingEndpoint = "/direction/driving"
	geocodeEndpoint = "/geocode/geo"
	statusOK        = "1"
	maxBodyBytes    = 1 << 20
)

var errUnexpectedStatus = errors.New("unexpected http status")

// ResponseError keeps the raw provider body next to the failure so callers
// can log it without another request.
type ResponseError struct {
	Err        error
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	if e.StatusCode != 0 && e.StatusCode != http.StatusOK {
		return fmt.Sprintf("%v (http %d): %s", e.Err, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Body)
}

func (e *ResponseError) Unwrap() error { return e.Err }

type Client struct {
	baseURL    string
	key        string
	timeout    time.Duration
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func New(baseURL, key string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Driving issues one request for the driving route and returns its first
// path. It never retries.
func (c *Client) Driving(ctx context.Context, q DrivingQuery) (Path, error) {
	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("destination", q.Destination)
	params.Set("extensions", "base")
	params.Set("strategy", strconv.Itoa(q.Strategy))
	params.Set("output", "json")
	params.Set("key", c.key)

	body, err := c.get(ctx, drivingEndpoint, params)
	if err != nil {
		return Path{}, err
	}
	var resp drivingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Path{}, &ResponseError{Err: fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err), StatusCode: http.StatusOK, Body: string(body)}
	}
	if string(resp.Status) != statusOK {
		return Path{}, &ResponseError{Err: fmt.Errorf("%w: status %q info %q", apperrors.ErrProviderStatus, resp.Status, resp.Info), StatusCode: http.StatusOK, Body: string(body)}
	}
	if resp.Route == nil || len(resp.Route.Paths) == 0 {
		return Path{}, &ResponseError{Err: fmt.Errorf("%w: no route paths", apperrors.ErrMalformedResponse), StatusCode: http.StatusOK, Body: string(body)}
	}
	first := resp.Route.Paths[0]
	if !first.Duration.valid || first.Duration.value < 0 {
		return Path{}, &ResponseError{Err: fmt.Errorf("%w: path has no duration", apperrors.ErrMalformedResponse), StatusCode: http.StatusOK, Body: string(body)}
	}
	return Path{DurationSeconds: first.Duration.value, DistanceMeters: first.Distance.value}, nil
}

func (c *Client) Geocode(ctx context.Context, address string) (Geocode, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("output", "json")
	params.Set("key", c.key)

	body, err := c.get(ctx, geocodeEndpoint, params)
	if err != nil {
		return Geocode{}, err
	}
	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Geocode{}, &ResponseError{Err: fmt.Errorf("%w: %v", apperrors.ErrMalformedResponse, err), StatusCode: http.StatusOK, Body: string(body)}
	}
	if string(resp.Status) != statusOK {
		return Geocode{}, &ResponseError{Err: fmt.Errorf("%w: status %q info %q", apperrors.ErrProviderStatus, resp.Status, resp.Info), StatusCode: http.StatusOK, Body: string(body)}
	}
	if len(resp.Geocodes) == 0 {
		return Geocode{}, &ResponseError{Err: fmt.Errorf("%w: address not found", apperrors.ErrNotFound), StatusCode: http.StatusOK, Body: string(body)}
	}
	g := resp.Geocodes[0]
	return Geocode{
		Location:         string(g.Location),
		FormattedAddress: string(g.FormattedAddress),
		District:         string(g.District),
		City:             string(g.City),
		Province:         string(g.Province),
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, redactKey(err, c.key))
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResponseError{Err: errUnexpectedStatus, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// redactKey strips the credential from transport errors, which embed the URL.
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), key, "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
