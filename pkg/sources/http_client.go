package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-inkhub/components/admin"
	"github.com/goliatone/go-inkhub/components/datatable"
)

// DefaultItemsKey is the envelope key read when a resource names none.
const DefaultItemsKey = "items"

// HTTPConfig configures the REST source.
type HTTPConfig struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	// Endpoints overrides Resource.Source.Endpoint per resource code.
	Endpoints map[string]string
}

// HTTPClient pulls working sets from REST endpoints returning entity arrays.
type HTTPClient struct {
	baseURL   string
	token     string
	client    *http.Client
	endpoints map[string]string
}

var _ admin.Source = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the Shopify, Pinterest and design endpoints.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("sources: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	endpoints := make(map[string]string, len(cfg.Endpoints))
	for code, path := range cfg.Endpoints {
		endpoints[code] = path
	}
	return &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.Token,
		client:    httpClient,
		endpoints: endpoints,
	}, nil
}

// Fetch implements admin.Source. The body is either an entity array or an
// object holding the array under the resource items key.
func (c *HTTPClient) Fetch(ctx context.Context, res admin.Resource) ([]datatable.Entity, error) {
	path := c.endpoints[res.Code]
	if path == "" {
		path = res.Source.Endpoint
	}
	if path == "" {
		return nil, fmt.Errorf("sources: %s has no endpoint", res.Code)
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, &raw); err != nil {
		return nil, err
	}
	return decodeItems(raw, res.Source.ItemsKey)
}

func decodeItems(raw json.RawMessage, key string) ([]datatable.Entity, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []datatable.Entity{}, nil
	}
	if trimmed[0] == '[' {
		var items []datatable.Entity
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("sources: decode items: %w", err)
		}
		return compact(items), nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("sources: decode envelope: %w", err)
	}
	if key == "" {
		key = DefaultItemsKey
	}
	body, ok := envelope[key]
	if !ok && key != DefaultItemsKey {
		body, ok = envelope[DefaultItemsKey]
	}
	if !ok {
		return nil, fmt.Errorf("sources: response has no %q array", key)
	}
	var items []datatable.Entity
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("sources: decode %s: %w", key, err)
	}
	return compact(items), nil
}

// compact drops null array members.
func compact(items []datatable.Entity) []datatable.Entity {
	out := make([]datatable.Entity, 0, len(items))
	for _, e := range items {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (c *HTTPClient) do(ctx context.Context, method, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("sources: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sources: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("sources: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("sources: decode response: %w", err)
	}
	return nil
}
