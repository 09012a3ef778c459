// Package targets is the HTTP client for the remote Targets REST API:
// maps listing, map graphs, target details and key results. Every call
// surfaces a distinguishable failure for auth, not-found, timeout and
// upstream errors.
package targets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"okrpilot/internal/domain"
)

// Config holds the upstream endpoint settings.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// LoadConfig reads the upstream settings from the environment.
func LoadConfig() Config {
	return Config{
		BaseURL: strings.TrimSpace(os.Getenv("TARGETS_BASE_URL")),
		Token:   strings.TrimSpace(os.Getenv("TARGETS_TOKEN")),
		Timeout: 30 * time.Second,
	}
}

// Client exposes the four upstream reads the assistant needs.
type Client interface {
	Maps(ctx context.Context) ([]domain.MapSummary, error)
	MapGraph(ctx context.Context, mapID int) (*domain.MapGraph, error)
	Target(ctx context.Context, targetID int) (*domain.TargetDetail, error)
	KeyResults(ctx context.Context, targetID int) ([]domain.KeyResult, error)
}

type httpClient struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a Client for the configured Targets instance.
func NewClient(cfg Config) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &httpClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *httpClient) Maps(ctx context.Context) ([]domain.MapSummary, error) {
	body, err := c.get(ctx, "/Integration/odata/ITargetsTargetsMaps")
	if err != nil {
		return nil, err
	}

	// Either {"value": [...]} or a bare array.
	var envelope struct {
		Value []json.RawMessage `json:"value"`
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Value != nil {
		items = envelope.Value
	} else if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: maps listing: %v", ErrBadPayload, err)
	}

	maps := make([]domain.MapSummary, 0, len(items))
	for _, raw := range items {
		var m domain.MapSummary
		if err := json.Unmarshal(raw, &m); err != nil || m.ID == 0 || m.Name == "" {
			// Tolerate stray records in the listing.
			continue
		}
		maps = append(maps, m)
	}
	return maps, nil
}

func (c *httpClient) MapGraph(ctx context.Context, mapID int) (*domain.MapGraph, error) {
	body, err := c.post(ctx, "/integration/odata/Targets/GetGoalsMap", map[string]int{"mapId": mapID})
	if err != nil {
		return nil, err
	}

	var resp struct {
		IsSuccess bool            `json:"IsSuccess"`
		Message   *string         `json:"Message"`
		Payload   domain.MapGraph `json:"Payload"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: map graph %d: %v", ErrBadPayload, mapID, err)
	}
	if !resp.IsSuccess && resp.Message != nil && *resp.Message != "" {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, *resp.Message)
	}
	return &resp.Payload, nil
}

func (c *httpClient) Target(ctx context.Context, targetID int) (*domain.TargetDetail, error) {
	body, err := c.get(ctx, fmt.Sprintf("/Integration/odata/ITargetsTargets(%d)", targetID))
	if err != nil {
		return nil, err
	}

	var target domain.TargetDetail
	if err := json.Unmarshal(body, &target); err != nil {
		return nil, fmt.Errorf("%w: target %d: %v", ErrBadPayload, targetID, err)
	}
	return &target, nil
}

func (c *httpClient) KeyResults(ctx context.Context, targetID int) ([]domain.KeyResult, error) {
	body, err := c.get(ctx, fmt.Sprintf("/integration/odata/Targets/GetKeyResults(targetId=%d)", targetID))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Payload struct {
			Data []json.RawMessage `json:"Data"`
		} `json:"Payload"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: key results for %d: %v", ErrBadPayload, targetID, err)
	}

	results := make([]domain.KeyResult, 0, len(resp.Payload.Data))
	for _, raw := range resp.Payload.Data {
		var kr domain.KeyResult
		if err := json.Unmarshal(raw, &kr); err != nil || kr.Description == "" {
			continue
		}
		results = append(results, kr)
	}
	return results, nil
}

func (c *httpClient) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *httpClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, payload)
}

func (c *httpClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c.cfg.BaseURL == "" || c.cfg.Token == "" {
		return nil, fmt.Errorf("%w: TARGETS_BASE_URL and TARGETS_TOKEN must be set", ErrNotConfigured)
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	// The token is sent as-is: it may already carry its scheme.
	req.Header.Set("Authorization", strings.Trim(c.cfg.Token, `"'`))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, snippet(body))
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrForbidden, snippet(body))
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet(body))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet(body))
	}

	return body, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// snippet bounds upstream error bodies the way they are surfaced to
// users.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
