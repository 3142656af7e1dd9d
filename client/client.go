// Package client talks to the remote routing service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/passage-nav/console/geojson"
	"github.com/passage-nav/console/plan"
)

type Client struct {
	base string
	hc   *http.Client
}

// New builds a client for the service at base, e.g. "http://localhost:8000".
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{},
	}
}

// Plan requests a great-circle route.
func (c *Client) Plan(ctx context.Context, req plan.Direct) (*plan.RouteResult, error) {
	return c.post(ctx, req.Endpoint(), req)
}

// PlanAvoid requests a hazard-avoiding route.
func (c *Client) PlanAvoid(ctx context.Context, req plan.Avoid) (*plan.RouteResult, error) {
	return c.post(ctx, req.Endpoint(), req)
}

func (c *Client) post(ctx context.Context, endpoint string, body interface{}) (*plan.RouteResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routing service unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("routing service returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var fc geojson.FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("routing service response: %v", err)
	}

	return plan.ParseResult(&fc)
}

// Health reports the service liveness flag from GET /health.
func (c *Client) Health(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", nil)
	if err != nil {
		return false, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("health returned %s", resp.Status)
	}

	var health struct {
		Ok bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false, err
	}
	return health.Ok, nil
}

// Fetch retrieves a reference document from an absolute URL, returning its
// content type and body.
func (c *Client) Fetch(ctx context.Context, url string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fetch %s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}

	ctype := strings.ToLower(strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0]))
	return ctype, body, nil
}
