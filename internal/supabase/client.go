package supabase

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crypto-trader/backend/internal/apperrors"
)

// ServiceName is how this dependency is identified in error responses and logs.
const ServiceName = "supabase"

// HealthChecker reports whether a downstream dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Client is a thin HTTP client for the Supabase project backing this API.
// Only the health probe is implemented; data access goes through PostgREST
// endpoints that are out of scope for the current skeleton.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a client for the given project URL, authenticating every
// request with the service key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// Health probes the Supabase auth health endpoint. Any transport failure or
// non-200 status is surfaced as an ExternalService error so the API layer
// maps it to a 503.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.NewExternalService(ServiceName, "health check failed", map[string]any{
			"cause": err.Error(),
		})
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewExternalService(ServiceName, "health check returned unexpected status", map[string]any{
			"status": resp.StatusCode,
		})
	}
	return nil
}
