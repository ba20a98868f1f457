package random

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultRandomOrgURL asks for one decimal fraction with two digits.
	DefaultRandomOrgURL = "https://www.random.org/decimal-fractions/?num=1&dec=2&col=1&format=plain&rnd=new"

	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 64
)

// RandomOrg fetches draws from random.org.
type RandomOrg struct {
	url    string
	client *http.Client
}

// RandomOrgOption configures a RandomOrg source.
type RandomOrgOption func(*RandomOrg)

// WithURL overrides the endpoint.
func WithURL(url string) RandomOrgOption {
	return func(r *RandomOrg) {
		if url != "" {
			r.url = url
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) RandomOrgOption {
	return func(r *RandomOrg) {
		if d > 0 {
			r.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) RandomOrgOption {
	return func(r *RandomOrg) {
		if c != nil {
			r.client = c
		}
	}
}

// NewRandomOrg returns a random.org backed Source.
func NewRandomOrg(opts ...RandomOrgOption) *RandomOrg {
	r := &RandomOrg{
		url:    DefaultRandomOrgURL,
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Float64 implements Source.
func (r *RandomOrg) Float64(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: build request: %w", ErrUnavailable, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return 0, fmt.Errorf("%w: request to random.org timed out", ErrUnavailable)
		}
		return 0, fmt.Errorf("%w: request to random.org failed: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: request to random.org failed: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, fmt.Errorf("%w: read random.org response: %w", ErrUnavailable, err)
	}

	text := strings.TrimSpace(string(body))
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v < 0 || v >= 1 {
		return 0, fmt.Errorf("%w: invalid response from random.org: %q", ErrUnavailable, text)
	}
	return v, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
