package battlesim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrRequest wraps any non-2xx answer from the service.
var ErrRequest = errors.New("request failed")

// Client talks to the meal arena API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// do sends a request and decodes the JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &e)
		return fmt.Errorf("%w: %s %s: %d %s", ErrRequest, method, path, resp.StatusCode, e.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Health checks GET /health.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// CreateMeal posts a new meal.
func (c *Client) CreateMeal(ctx context.Context, m Meal) (Meal, error) {
	req := map[string]any{
		"meal":       m.Name,
		"cuisine":    m.Cuisine,
		"price":      m.Price,
		"difficulty": m.Difficulty,
	}
	var resp struct {
		Meal Meal `json:"meal"`
	}
	err := c.do(ctx, http.MethodPost, "/create-meal", req, &resp)
	return resp.Meal, err
}

// DeleteMeal soft-deletes a meal.
func (c *Client) DeleteMeal(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/delete-meal/%d", id), nil, nil)
}

// Prep stages a meal by name and returns the staged names.
func (c *Client) Prep(ctx context.Context, name string) ([]string, error) {
	var resp struct {
		Combatants []string `json:"combatants"`
	}
	err := c.do(ctx, http.MethodPost, "/prep-combatant", map[string]string{"meal": name}, &resp)
	return resp.Combatants, err
}

// Combatants lists the staged meals.
func (c *Client) Combatants(ctx context.Context) ([]Meal, error) {
	var resp struct {
		Combatants []Meal `json:"combatants"`
	}
	err := c.do(ctx, http.MethodGet, "/get-combatants", nil, &resp)
	return resp.Combatants, err
}

// Clear empties the roster.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/clear-combatants", nil, nil)
}

// Battle resolves a battle.
func (c *Client) Battle(ctx context.Context) (Outcome, error) {
	var resp struct {
		Outcome Outcome `json:"outcome"`
	}
	err := c.do(ctx, http.MethodGet, "/battle", nil, &resp)
	return resp.Outcome, err
}

// Leaderboard returns every ranked meal sorted by sortBy.
func (c *Client) Leaderboard(ctx context.Context, sortBy string) ([]Entry, error) {
	var resp struct {
		Leaderboard []Entry `json:"leaderboard"`
	}
	err := c.do(ctx, http.MethodGet, "/leaderboard?sort="+sortBy, nil, &resp)
	return resp.Leaderboard, err
}
