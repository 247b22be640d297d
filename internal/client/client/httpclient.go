package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Johnwickx812/MediNutri/internal/client/models"
	"github.com/Johnwickx812/MediNutri/internal/common"
)

// HTTPClient talks JSON over HTTP to the backend. Every authenticated call
// carries the bearer token set via SetToken.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken replaces the bearer token. Safe to call while requests are in
// flight on other goroutines.
func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// doJSON performs one request. A non-nil body is sent as JSON; a non-nil out
// receives the decoded response body. Transport and HTTP-status failures are
// mapped to the package sentinel errors.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearerToken(); token != "" {
		req.Header.Set(common.AuthHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %s", ErrUnavailable, resp.Status)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", common.ErrNotFound, method, path)
	case resp.StatusCode >= 400:
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed: %s; body: %s", resp.Status, string(b))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

type authResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}

	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("registration rejected")
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, models.User, error) {
	body := map[string]string{"email": email, "password": password}

	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", body, &resp); err != nil {
		return "", models.User{}, err
	}
	if !resp.Success || resp.Token == "" {
		return "", models.User{}, ErrUnauthorized
	}

	c.SetToken(resp.Token)
	return resp.Token, resp.User, nil
}

func (c *HTTPClient) Me(ctx context.Context) (models.User, error) {
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return models.User{}, err
	}
	if !resp.Success {
		return models.User{}, ErrUnauthorized
	}
	return resp.User, nil
}

type pullResponse struct {
	Success     bool                     `json:"success"`
	Medications *[]models.Medication     `json:"medications"`
	Meals       *[]models.MealEntry      `json:"meals"`
	Reminders   *models.ReminderSettings `json:"reminders"`
}

func (c *HTTPClient) PullData(ctx context.Context) (models.RemoteSnapshot, error) {
	var resp pullResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/data", nil, &resp); err != nil {
		return models.RemoteSnapshot{}, err
	}
	if !resp.Success {
		return models.RemoteSnapshot{}, fmt.Errorf("pull rejected by server")
	}
	return models.RemoteSnapshot{
		Medications: resp.Medications,
		Meals:       resp.Meals,
		Reminders:   resp.Reminders,
	}, nil
}

type syncResponse struct {
	Success bool `json:"success"`
}

func (c *HTTPClient) PushData(ctx context.Context, snap models.Snapshot) error {
	var resp syncResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/user/sync", snap, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("push rejected by server")
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.doJSON(ctx, http.MethodGet, "/api/health", nil, nil)
}
