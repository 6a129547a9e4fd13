// Package rankclient talks to the ranker HTTP API.
package rankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Ranker/internal/api"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
	"github.com/MikeSquared-Agency/Ranker/internal/sortconfig"
	"github.com/MikeSquared-Agency/Ranker/internal/store"
)

// StatusError is returned for responses with a 4xx or 5xx status.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ranker %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) Rank(ctx context.Context, req api.RankRequest) (*api.RankResponse, error) {
	var resp api.RankResponse
	if err := c.doReq(ctx, http.MethodPost, "/api/v1/rank", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Explain(ctx context.Context, req api.ExplainRequest) (*api.ExplainResponse, error) {
	var resp api.ExplainResponse
	if err := c.doReq(ctx, http.MethodPost, "/api/v1/explain", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListConfigs(ctx context.Context) ([]store.SortingConfig, error) {
	var resp struct {
		Configs []store.SortingConfig `json:"configs"`
	}
	if err := c.doReq(ctx, http.MethodGet, "/api/v1/sorting-configs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

func (c *HTTPClient) ActiveConfig(ctx context.Context) (*store.SortingConfig, error) {
	var cfg store.SortingConfig
	if err := c.doReq(ctx, http.MethodGet, "/api/v1/sorting-configs/active", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) Validate(ctx context.Context, w scoring.WeightVector) (*api.ValidateResponse, error) {
	var resp api.ValidateResponse
	if err := c.doReq(ctx, http.MethodPost, "/api/v1/sorting-configs/validate", w, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SaveConfig(ctx context.Context, req sortconfig.SaveRequest) (*store.SortingConfig, error) {
	var cfg store.SortingConfig
	if err := c.doReq(ctx, http.MethodPost, "/api/v1/sorting-configs", req, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyConfig returns false, nil when the server does not know id.
func (c *HTTPClient) ApplyConfig(ctx context.Context, id uuid.UUID) (bool, error) {
	err := c.doReq(ctx, http.MethodPost, "/api/v1/sorting-configs/"+id.String()+"/apply", nil, nil)
	return refusal(err)
}

func (c *HTTPClient) RevertToDefault(ctx context.Context) error {
	return c.doReq(ctx, http.MethodPost, "/api/v1/sorting-configs/revert", nil, nil)
}

// DeleteConfig returns false, nil when id is unknown, active or the default.
func (c *HTTPClient) DeleteConfig(ctx context.Context, id uuid.UUID) (bool, error) {
	err := c.doReq(ctx, http.MethodDelete, "/api/v1/sorting-configs/"+id.String(), nil, nil)
	return refusal(err)
}

// refusal maps the not-found and conflict statuses to a plain false.
func refusal(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var se *StatusError
	if errors.As(err, &se) && (se.Status == http.StatusNotFound || se.Status == http.StatusConflict) {
		return false, nil
	}
	return false, err
}
